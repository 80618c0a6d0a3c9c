package config

type WorkerKeyStruct struct {
	PersistUsageQueue string
}

var WorkerKey = &WorkerKeyStruct{
	PersistUsageQueue: "persist_usage_queue",
}
