package gateway

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/drivegate/auth/session"
	"github.com/kbukum/drivegate/drive"
	"github.com/kbukum/drivegate/errors"
	"github.com/kbukum/drivegate/logger"
	"github.com/kbukum/drivegate/server"
	"github.com/kbukum/drivegate/validation"
)

type loginRequest struct {
	Password string `json:"password" validate:"required,max=1024"`
}

type folderParams struct {
	FolderID  string `json:"folderId" validate:"required,max=256,driveid"`
	PageToken string `json:"pageToken" validate:"omitempty,max=1024,printascii"`
}

type fileParams struct {
	FileID string `json:"fileId" validate:"required,max=256,driveid"`
}

type loginResponse struct {
	Success bool `json:"success"`
}

type folderResponse struct {
	Files         []drive.File `json:"files"`
	NextPageToken string       `json:"nextPageToken,omitempty"`
}

func (g *Gateway) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		g.fail(c, "login", errors.Validation("Request body must be a JSON object with a password").WithCause(err))
		return
	}
	if err := validation.Validate(req); err != nil {
		g.fail(c, "login", err)
		return
	}

	cookie, err := g.gate.Authenticate(req.Password)
	if err != nil {
		g.fail(c, "login", err)
		return
	}
	http.SetCookie(c.Writer, cookie)
	server.RespondOK(c, loginResponse{Success: true})
}

func (g *Gateway) logout(c *gin.Context) {
	http.SetCookie(c.Writer, session.ClearCookie())
	server.RespondOK(c, loginResponse{Success: true})
}

func (g *Gateway) listFolder(c *gin.Context) {
	p := folderParams{FolderID: c.Param("folderId"), PageToken: c.Query("pageToken")}
	if err := validation.Validate(p); err != nil {
		g.fail(c, "list", err)
		return
	}
	if !g.capabilities.Configured() {
		g.fail(c, "list", errors.Configuration("capability secret"))
		return
	}

	ctx := c.Request.Context()
	list, err := g.drive.ListChildren(ctx, p.FolderID, p.PageToken)
	if err != nil {
		g.fail(c, "list", drive.ToAppError(err))
		return
	}

	issued := 0
	for i := range list.Files {
		f := &list.Files[i]
		if f.IsFolder() {
			continue
		}
		token, err := g.capabilities.Issue(f.ID)
		if err != nil {
			g.fail(c, "list", errors.Internal(err))
			return
		}
		f.DownloadURL = "/api/download/" + token + "/" + url.PathEscape(f.Name)
		issued++
	}
	g.metrics.RecordCapabilityIssued(ctx, issued)

	server.RespondOK(c, folderResponse{Files: list.Files, NextPageToken: list.NextPageToken})
}

func (g *Gateway) fileMetadata(c *gin.Context) {
	p := fileParams{FileID: c.Param("fileId")}
	if err := validation.Validate(p); err != nil {
		g.fail(c, "metadata", err)
		return
	}

	f, err := g.drive.GetMetadata(c.Request.Context(), p.FileID)
	if err != nil {
		g.fail(c, "metadata", drive.ToAppError(err))
		return
	}
	server.RespondOK(c, f)
}

func (g *Gateway) download(c *gin.Context) {
	// filename is a catch-all so names holding an escaped "/" still route.
	filename := strings.TrimPrefix(c.Param("filename"), "/")
	g.proxy.ServeDownload(c.Writer, c.Request, c.Param("token"), filename)
}

// fail logs err according to its outcome and renders it.
func (g *Gateway) fail(c *gin.Context, op string, err error) {
	log := g.log.WithContext(c.Request.Context())
	fields := logger.MergeWithError(logger.Fields(
		logger.FieldOperation, op,
		logger.FieldClientIP, c.ClientIP(),
	), err)

	switch errors.Classify(err) {
	case errors.OutcomeUnauthenticated, errors.OutcomeInvalidInput, errors.OutcomeRateLimited:
		log.Debug("Request rejected", fields)
	case errors.OutcomeUpstreamFailure:
		log.Warn("Drive request failed", fields)
	case errors.OutcomeConfigError:
		log.Error("Server configuration incomplete", fields)
	default:
		log.Error("Request failed", fields)
		if !errors.IsAppError(err) {
			err = errors.Internal(err)
		}
	}
	server.RespondWithError(c, err)
}
