package httpapi

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"github.com/dmitrymomot/drive/internal"
	"github.com/dmitrymomot/drive/middlewares"
	"github.com/dmitrymomot/drive/pkg/sanitizer"
	"github.com/dmitrymomot/drive/pkg/storage"
	"github.com/dmitrymomot/drive/pkg/tree"
)

// Engine is the subset of *tree.Engine the API calls.
type Engine interface {
	ProvisionRoot(ctx context.Context, ownerID string) (string, error)
	GetRoot(ctx context.Context, ownerID string) (string, error)
	CreateFolder(ctx context.Context, requesterID, parentID, name string) (*tree.Node, error)
	CreateFile(ctx context.Context, requesterID, parentID, name string, content io.Reader) (*tree.Node, error)
	GetDetail(ctx context.Context, requesterID, id string) (*tree.Node, error)
	ListFolder(ctx context.Context, requesterID, folderID string) ([]tree.Node, error)
	ResolvePath(ctx context.Context, requesterID, targetID string) ([]tree.Node, error)
	Download(ctx context.Context, requesterID, id string) (*tree.Content, error)
	RequestDelete(ctx context.Context, requesterID, id string) error
	IssueEligibility(ctx context.Context, requesterID, blobID string) (string, error)
	ConsumeEligibility(ctx context.Context, blobID, token string) (*tree.Content, error)
}

var _ Engine = (*tree.Engine)(nil)

// StorageHandler serves /api/storage.
type StorageHandler struct {
	engine  Engine
	account middlewares.AccountResolver
}

// StorageOption configures a StorageHandler.
type StorageOption func(*StorageHandler)

// WithAccountResolver replaces the default X-Account-ID header resolver.
func WithAccountResolver(r middlewares.AccountResolver) StorageOption {
	return func(h *StorageHandler) {
		if r != nil {
			h.account = r
		}
	}
}

// NewStorageHandler creates the storage API handler.
func NewStorageHandler(engine Engine, opts ...StorageOption) *StorageHandler {
	h := &StorageHandler{
		engine:  engine,
		account: middlewares.HeaderAccountResolver(middlewares.DefaultAccountHeader),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *StorageHandler) Routes(r internal.Router) {
	r.Route("/api/storage", func(r internal.Router) {
		// Token holders need no account.
		r.GET("/{id}/download", h.downloadWithToken)

		r.Group(func(r internal.Router) {
			r.Use(middlewares.Account(h.account))

			r.POST("/root", h.provisionRoot)
			r.GET("/root", h.root)
			r.GET("/list", h.list)
			r.POST("/folders", h.createFolder)
			r.POST("/upload", h.upload)
			r.GET("/{id}", h.detail)
			r.GET("/{id}/path", h.path)
			r.GET("/{id}/content", h.download)
			r.DELETE("/{id}", h.remove)
			r.POST("/{id}/eligibility", h.issueEligibility)
		})
	})
}

type idResponse struct {
	ID string `json:"id"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

type createFolderRequest struct {
	ParentFolderID string `json:"parentFolderId"`
	Name           string `json:"name"`
}

func (h *StorageHandler) provisionRoot(c internal.Context) error {
	id, err := h.engine.ProvisionRoot(c.Context(), c.AccountID())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, idResponse{ID: id})
}

func (h *StorageHandler) root(c internal.Context) error {
	id, err := h.engine.GetRoot(c.Context(), c.AccountID())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, idResponse{ID: id})
}

func (h *StorageHandler) list(c internal.Context) error {
	folderID := c.Query("folderId")
	if folderID == "" {
		return internal.ErrBadRequest("folderId is required", internal.WithErrorCode(CodeBadRequest))
	}

	nodes, err := h.engine.ListFolder(c.Context(), c.AccountID(), folderID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, nodes)
}

func (h *StorageHandler) createFolder(c internal.Context) error {
	var req createFolderRequest
	if err := c.BindJSON(&req); err != nil {
		return err
	}
	if req.ParentFolderID == "" {
		return internal.ErrBadRequest("parentFolderId is required", internal.WithErrorCode(CodeBadRequest))
	}

	name, err := sanitizer.Name(req.Name)
	if err != nil {
		return err
	}

	node, err := h.engine.CreateFolder(c.Context(), c.AccountID(), req.ParentFolderID, name)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, node)
}

// upload expects multipart fields "parentFolderId", "file" and an optional
// "name" overriding the file name.
func (h *StorageHandler) upload(c internal.Context) error {
	file, header, err := c.FormFile("file")
	if err != nil {
		if tooLarge := asMaxBytes(err); tooLarge != nil {
			return tooLarge
		}
		return internal.ErrBadRequest("multipart field \"file\" is required",
			internal.WithError(err),
			internal.WithErrorCode(CodeBadRequest),
		)
	}
	defer file.Close()

	parentID := c.FormValue("parentFolderId")
	if parentID == "" {
		return internal.ErrBadRequest("parentFolderId is required", internal.WithErrorCode(CodeBadRequest))
	}

	raw := c.FormValue("name")
	if raw == "" {
		raw = header.Filename
	}
	name, err := sanitizer.Name(raw)
	if err != nil {
		return err
	}

	node, err := h.engine.CreateFile(c.Context(), c.AccountID(), parentID, name, file)
	if err != nil {
		return err
	}
	c.LogInfo("file uploaded",
		slog.String("node_id", node.ID),
		slog.Int64("length", node.Length),
	)
	return c.JSON(http.StatusOK, node)
}

func (h *StorageHandler) detail(c internal.Context) error {
	node, err := h.engine.GetDetail(c.Context(), c.AccountID(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, node)
}

func (h *StorageHandler) path(c internal.Context) error {
	nodes, err := h.engine.ResolvePath(c.Context(), c.AccountID(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, nodes)
}

func (h *StorageHandler) remove(c internal.Context) error {
	if err := h.engine.RequestDelete(c.Context(), c.AccountID(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusAccepted)
}

func (h *StorageHandler) issueEligibility(c internal.Context) error {
	token, err := h.engine.IssueEligibility(c.Context(), c.AccountID(), c.Param("id"))
	if err != nil {
		return err
	}
	c.SetHeader("Cache-Control", "no-store")
	return c.JSON(http.StatusOK, tokenResponse{Token: token})
}

func (h *StorageHandler) download(c internal.Context) error {
	content, err := h.engine.Download(c.Context(), c.AccountID(), c.Param("id"))
	if err != nil {
		return err
	}
	return stream(c, content)
}

func (h *StorageHandler) downloadWithToken(c internal.Context) error {
	content, err := h.engine.ConsumeEligibility(c.Context(), c.Param("id"), c.Query("token"))
	if err != nil {
		return err
	}
	return stream(c, content)
}

func stream(c internal.Context, content *tree.Content) error {
	defer content.Close()

	contentType := content.Node.ContentType
	if contentType == "" {
		contentType = storage.MIMEOctetStream
	}
	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": content.Node.Name})
	if disposition == "" {
		disposition = "attachment"
	}
	c.SetHeader("Content-Disposition", disposition)
	c.SetHeader("Content-Length", strconv.FormatInt(content.Node.Length, 10))
	c.SetHeader("Cache-Control", "private, no-store")
	return c.Stream(http.StatusOK, contentType, content)
}

func asMaxBytes(err error) *internal.HTTPError {
	var tooLarge *http.MaxBytesError
	if !errors.As(err, &tooLarge) {
		return nil
	}
	return internal.ErrRequestTooLarge("request body too large",
		internal.WithError(err),
		internal.WithErrorCode(CodeBodyTooLarge),
	)
}
