package documents

// DefaultUsername owns uploads that arrive without a username.
const DefaultUsername = "guest"

// Ingested describes a stored document and what extraction produced.
type Ingested struct {
	Username  string
	Filename  string
	MimeType  string
	SizeBytes int64
	Words     int
	Pages     int
	Method    string
}
