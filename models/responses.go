package models

// CreateResp acknowledges a create with the new document id as lowercase hex.
// UploadedImages carries the stored paths of any photos attached to a report.
type CreateResp struct {
	OK             bool     `json:"ok"`
	ID             string   `json:"id"`
	UploadedImages []string `json:"uploadedImages,omitempty"`
}

// OKResp acknowledges a mutation that returns no document.
type OKResp struct {
	OK bool `json:"ok"`
}

// DeleteAllResp reports how many documents a bulk delete removed.
type DeleteAllResp struct {
	OK      bool  `json:"ok"`
	Deleted int64 `json:"deleted"`
}
