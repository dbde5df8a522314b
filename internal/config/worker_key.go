package config

type WorkerKeyStruct struct {
	PersistScoresQueue string
}

var WorkerKey = &WorkerKeyStruct{
	PersistScoresQueue: "quiz:persist_scores_queue",
}
