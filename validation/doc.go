// Package validation checks request input before it reaches a handler.
//
// Bodies, path and query parameters are gathered into a struct and checked
// with go-playground/validator tags:
//
//	type folderParams struct {
//	    FolderID string `json:"folderId" validate:"required,max=256,driveid"`
//	}
//	err := validation.Validate(folderParams{FolderID: c.Param("folderId")})
//
// Failures are *errors.AppError with code INVALID_INPUT and a "fields"
// detail naming each field by its json tag.
package validation
