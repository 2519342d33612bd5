package rest

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/bergason/inventory"
	"github.com/bergason/inventory/internal/config"
	"github.com/bergason/inventory/internal/domain"
	"github.com/bergason/inventory/internal/infra/blob"
	"github.com/bergason/inventory/internal/present/rest/presenter"
	"github.com/bergason/inventory/internal/usecase"
)

const maxUploadBytes = 10 << 20

// Signal is the slice of the signal service the handler needs; the realtime
// endpoint and the ledger mutations publish through it.
type Signal interface {
	Publish(ctx context.Context, event inventory.Event) error
	Realtime(ctx context.Context, request <-chan []string, response chan<- inventory.Event)
}

// BlobStore is the upload surface of the blob store.
type BlobStore interface {
	Store(ctx context.Context, kind, ext string, data []byte) (string, error)
	StoreThumbnail(ctx context.Context, kind string, data []byte) (string, error)
	Path(kind, name string) (string, error)
}

type Handler struct {
	site        config.Site
	inventories *usecase.InventoryUsecase
	tokens      *usecase.TokenUsecase
	ledger      *usecase.LedgerUsecase
	verifier    *usecase.VerifyUsecase
	signal      Signal
	blobs       BlobStore
}

func NewHandler(
	site config.Site,
	inventories *usecase.InventoryUsecase,
	tokens *usecase.TokenUsecase,
	ledger *usecase.LedgerUsecase,
	verifier *usecase.VerifyUsecase,
	signal Signal,
	blobs BlobStore,
) *Handler {
	return &Handler{
		site:        site,
		inventories: inventories,
		tokens:      tokens,
		ledger:      ledger,
		verifier:    verifier,
		signal:      signal,
		blobs:       blobs,
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api")
	api.GET("/", h.handleRoot)
	api.POST("/inventories", h.handleCreateInventory)
	api.GET("/inventories", h.handleListInventories)
	api.GET("/inventories/:id", h.handleGetInventory)
	api.PUT("/inventories/:id", h.handleUpdateInventory)
	api.DELETE("/inventories/:id", h.handleDeleteInventory)
	api.POST("/inventories/:id/generate-link", h.handleGenerateLink)
	api.GET("/sign/:token", h.handleSigningView)
	api.POST("/sign/:token/submit", h.handleSubmitSignature)
	api.POST("/sign/:token/lock", h.handleLock)
	api.GET("/verify/:token", h.handleVerify)
	api.POST("/upload/photo", h.handleUploadPhoto)
	api.POST("/upload/document", h.handleUploadDocument)
	api.POST("/upload/property-photo", h.handleUploadPropertyPhoto)
	api.GET("/uploads/:kind/:name", h.handleServeUpload)
	api.GET("/rooms/predefined", h.handlePredefinedRooms)
	e.GET("/realtime", h.handleRealtime)
}

func (h *Handler) handleRoot(c echo.Context) error {
	return presenter.OK(c, echo.Map{"message": "Bergason Property Services - Inventory API"})
}

func (h *Handler) handleCreateInventory(c echo.Context) error {
	ctx := c.Request().Context()

	var content inventory.Content
	if err := c.Bind(&content); err != nil {
		return presenter.BadRequest(c, err)
	}

	inv, err := h.inventories.Create(ctx, content)
	if err != nil {
		return respondError(c, err)
	}
	return presenter.Created(c, inv.View())
}

func (h *Handler) handleListInventories(c echo.Context) error {
	ctx := c.Request().Context()

	invs, err := h.inventories.List(ctx)
	if err != nil {
		return respondError(c, err)
	}

	views := make([]inventory.InventoryView, 0, len(invs))
	for _, inv := range invs {
		views = append(views, inv.View())
	}
	return presenter.OK(c, views)
}

func (h *Handler) handleGetInventory(c echo.Context) error {
	ctx := c.Request().Context()

	inv, err := h.inventories.Get(ctx, c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return presenter.OK(c, inv.View())
}

func (h *Handler) handleUpdateInventory(c echo.Context) error {
	ctx := c.Request().Context()

	var content inventory.Content
	if err := c.Bind(&content); err != nil {
		return presenter.BadRequest(c, err)
	}

	inv, err := h.inventories.UpdateContent(ctx, c.Param("id"), content)
	if err != nil {
		return respondError(c, err)
	}
	return presenter.OK(c, inv.View())
}

func (h *Handler) handleDeleteInventory(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.inventories.Delete(ctx, c.Param("id")); err != nil {
		return respondError(c, err)
	}
	return presenter.OK(c, echo.Map{"status": "deleted"})
}

func (h *Handler) handleGenerateLink(c echo.Context) error {
	ctx := c.Request().Context()

	token, err := h.tokens.IssueOrGet(ctx, c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}

	return presenter.OK(c, inventory.ShareLink{
		Token: token,
		URL:   h.site.BaseURL + "/sign/" + token,
	})
}

func (h *Handler) handleSigningView(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := h.tokens.Resolve(ctx, c.Param("token"))
	if err != nil {
		return respondError(c, err)
	}

	inv, err := h.inventories.Get(ctx, id)
	if err != nil {
		return respondError(c, err)
	}

	entries, err := h.ledger.Entries(ctx, id)
	if err != nil {
		return respondError(c, err)
	}

	return presenter.OK(c, inventory.SigningView{
		ID:            inv.ID,
		Status:        string(inv.Status),
		Content:       inv.Content,
		TenantPresent: inv.TenantPresent,
		Locked:        inv.Status.Locked(),
		Signatures:    domain.SignatureViews(entries),
	})
}

func (h *Handler) handleSubmitSignature(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := h.tokens.Resolve(ctx, c.Param("token"))
	if err != nil {
		return respondError(c, err)
	}

	var sub inventory.SignatureSubmission
	if err := c.Bind(&sub); err != nil {
		return presenter.BadRequest(c, err)
	}

	entry, err := h.ledger.Append(ctx, id, sub, h.sourceAddr(c))
	if err != nil {
		return respondError(c, err)
	}

	h.publish(ctx, inventory.Event{
		Type:        inventory.EventSignatureAppended,
		InventoryID: id,
		SignerName:  entry.SignerName,
		Role:        string(entry.Role),
		Timestamp:   entry.SignedAt,
	})

	return presenter.Created(c, echo.Map{
		"entry":            entry.View(),
		"verificationLink": "/verify/" + c.Param("token"),
	})
}

func (h *Handler) handleLock(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := h.tokens.Resolve(ctx, c.Param("token"))
	if err != nil {
		return respondError(c, err)
	}

	if err := h.ledger.Lock(ctx, id); err != nil {
		return respondError(c, err)
	}

	h.publish(ctx, inventory.Event{
		Type:        inventory.EventLocked,
		InventoryID: id,
		Timestamp:   time.Now().UTC(),
	})

	return presenter.OK(c, echo.Map{"status": string(domain.StatusSigned), "locked": true})
}

func (h *Handler) handleVerify(c echo.Context) error {
	ctx := c.Request().Context()

	rec, err := h.verifier.Verify(ctx, c.Param("token"))
	if err != nil {
		return respondError(c, err)
	}
	return presenter.OK(c, rec)
}

func (h *Handler) handleUploadPhoto(c echo.Context) error {
	ctx := c.Request().Context()

	data, ext, filename, err := readUpload(c)
	if err != nil {
		return presenter.BadRequest(c, err)
	}

	ref, err := h.blobs.Store(ctx, blob.KindPhotos, ext, data)
	if err != nil {
		return respondError(c, err)
	}

	// Thumbnails are best effort; an undecodable image still keeps its ref.
	thumbRef, _ := h.blobs.StoreThumbnail(ctx, blob.KindPhotos, data)

	return presenter.OK(c, inventory.UploadResult{
		FileRef:          ref,
		ThumbnailRef:     thumbRef,
		OriginalFilename: filename,
		RoomReference:    c.FormValue("roomReference"),
		Description:      c.FormValue("description"),
		UploadedAt:       time.Now().UTC(),
	})
}

func (h *Handler) handleUploadDocument(c echo.Context) error {
	ctx := c.Request().Context()

	data, ext, filename, err := readUpload(c)
	if err != nil {
		return presenter.BadRequest(c, err)
	}

	ref, err := h.blobs.Store(ctx, blob.KindDocuments, ext, data)
	if err != nil {
		return respondError(c, err)
	}

	return presenter.OK(c, inventory.UploadResult{
		FileRef:          ref,
		OriginalFilename: filename,
		UploadedAt:       time.Now().UTC(),
	})
}

func (h *Handler) handleUploadPropertyPhoto(c echo.Context) error {
	ctx := c.Request().Context()

	data, ext, filename, err := readUpload(c)
	if err != nil {
		return presenter.BadRequest(c, err)
	}

	ref, err := h.blobs.Store(ctx, blob.KindPropertyPhotos, ext, data)
	if err != nil {
		return respondError(c, err)
	}

	return presenter.OK(c, inventory.UploadResult{
		FileRef:          ref,
		OriginalFilename: filename,
		UploadedAt:       time.Now().UTC(),
	})
}

func (h *Handler) handleServeUpload(c echo.Context) error {
	path, err := h.blobs.Path(c.Param("kind"), c.Param("name"))
	if err != nil {
		return respondError(c, err)
	}
	return c.File(path)
}

func (h *Handler) handlePredefinedRooms(c echo.Context) error {
	return presenter.OK(c, echo.Map{"rooms": inventory.PredefinedRooms})
}

func (h *Handler) sourceAddr(c echo.Context) string {
	if addr, ok := c.Request().Context().Value(domain.SourceAddrCtxKey).(string); ok && addr != "" {
		return addr
	}
	return c.RealIP()
}

func (h *Handler) publish(ctx context.Context, event inventory.Event) {
	if h.signal == nil {
		return
	}
	// Delivery is advisory; the ledger is already durable.
	_ = h.signal.Publish(ctx, event)
}

func readUpload(c echo.Context) ([]byte, string, string, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		return nil, "", "", err
	}
	if fh.Size > maxUploadBytes {
		return nil, "", "", domain.ValidationError{Reason: "file too large"}
	}

	f, err := fh.Open()
	if err != nil {
		return nil, "", "", err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes+1))
	if err != nil {
		return nil, "", "", err
	}
	if len(data) > maxUploadBytes {
		return nil, "", "", domain.ValidationError{Reason: "file too large"}
	}

	return data, filepath.Ext(fh.Filename), fh.Filename, nil
}

func respondError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return presenter.NotFound(c, "not found")
	case errors.Is(err, domain.ErrAlreadyLocked):
		return presenter.Locked(c, "inventory is locked")
	case errors.Is(err, domain.ErrEmptyLedger):
		return presenter.Conflict(c, "cannot lock an inventory with no signatures")
	case errors.Is(err, domain.ErrInvalidSignature):
		return presenter.Unprocessable(c, "signature image is blank")
	case errors.Is(err, domain.ErrValidation):
		return presenter.BadRequestMessage(c, err.Error())
	default:
		return presenter.InternalError(c, err)
	}
}
