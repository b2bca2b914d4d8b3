package api

// SetMaxUploadBytes lowers the upload cap for a test and returns a func that
// restores it.
func SetMaxUploadBytes(n int64) (restore func()) {
	prev := maxUploadBytes
	maxUploadBytes = n
	return func() { maxUploadBytes = prev }
}
