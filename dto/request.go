package dto

import (
	"errors"
	"mime/multipart"
)

// StatementRequest represents the multipart upload shared by the parse,
// verify and import endpoints.
type StatementRequest struct {
	File     *multipart.FileHeader `form:"file" binding:"required"`
	Password string                `form:"password"`
	DryRun   bool                  `form:"dry_run"`
}

// Validate performs basic validation on the request
func (r *StatementRequest) Validate() error {
	if r.File == nil {
		return errors.New("statement file is required")
	}
	return nil
}
