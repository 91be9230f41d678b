package pipeline

// WorkerCount returns min(parallelism, max(1, size/chunkSize)).
// A negative size means the input length is unknown, and all of parallelism is used.
func WorkerCount(parallelism int, size int64, chunkSize int) int {
	if parallelism < 1 {
		parallelism = 1
	}
	if size < 0 || chunkSize <= 0 {
		return parallelism
	}
	chunks := size / int64(chunkSize)
	if chunks < 1 {
		chunks = 1
	}
	if chunks < int64(parallelism) {
		return int(chunks)
	}
	return parallelism
}
