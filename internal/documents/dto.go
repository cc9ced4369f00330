package documents

const emptyTextWarning = "no text could be extracted from this document"

// UploadResponse is returned by /upload.
type UploadResponse struct {
	Success  bool   `json:"success"`
	Filename string `json:"filename"`
	Words    int    `json:"words"`
	Pages    int    `json:"pages"`
	Warning  string `json:"warning,omitempty"`
}

func toUploadResponse(in Ingested) UploadResponse {
	resp := UploadResponse{
		Success:  true,
		Filename: in.Filename,
		Words:    in.Words,
		Pages:    in.Pages,
	}
	if in.Words == 0 {
		resp.Warning = emptyTextWarning
	}
	return resp
}
