package config

type WorkerKeyStruct struct {
	SolutionQueue string
}

var WorkerKey = &WorkerKeyStruct{
	SolutionQueue: "generate_solutions_queue",
}
