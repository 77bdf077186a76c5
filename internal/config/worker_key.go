package config

type WorkerKeyStruct struct {
	PersistResultsQueue string
	PersistPapersQueue  string
}

var WorkerKey = &WorkerKeyStruct{
	PersistResultsQueue: "persist_results_queue",
	PersistPapersQueue:  "persist_papers_queue",
}
