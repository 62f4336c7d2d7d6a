package endpoints

import "github.com/smolnetwork/smolnet"

// FileDownload fetches a stored file into a local temporary file.
type FileDownload struct {
	Name       string
	OnProgress smolnet.ProgressFunc
}

func (e FileDownload) Path() string                     { return smolnet.PathJoin("/files", e.Name) }
func (FileDownload) Method() smolnet.Method             { return smolnet.GET }
func (FileDownload) Parameters() smolnet.Param          { return nil }
func (FileDownload) TransferMode() smolnet.TransferMode { return smolnet.Download }
func (FileDownload) ResponseKind() smolnet.ResponseKind { return smolnet.File }
func (e FileDownload) Progress() smolnet.ProgressFunc   { return e.OnProgress }

// FileUpload stores Data under Name. The server answers with the stored
// file's description, see StoredFile.
type FileUpload struct {
	Name       string
	Data       smolnet.Payload
	OnProgress smolnet.ProgressFunc
}

// StoredFile describes a file after upload.
type StoredFile struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
	Type string `json:"type,omitempty"`
}

func (e FileUpload) Path() string                     { return smolnet.PathJoin("/files", e.Name) }
func (FileUpload) Method() smolnet.Method             { return smolnet.PUT }
func (FileUpload) Parameters() smolnet.Param          { return nil }
func (FileUpload) TransferMode() smolnet.TransferMode { return smolnet.Upload }
func (FileUpload) ResponseKind() smolnet.ResponseKind { return smolnet.JSON }
func (e FileUpload) Progress() smolnet.ProgressFunc   { return e.OnProgress }
func (e FileUpload) Payload() smolnet.Payload         { return e.Data }
