package util

const (
	StorageLocal = "local"
	StorageMinio = "minio"
)

// gin 上下文 key
const (
	ContextUser    = "user"
	ContextSession = "session"
)
