package util

const (
	StorageLocal = "local"
	StorageMinio = "minio"
)

const (
	MinQuestionPoints = 1
	MaxQuestionPoints = 10
)
