package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"
)

// BatchQR renders the QR code for a batch as a data URL.
type BatchQR interface {
    Batch(batchID uint64) (string, error)
}

// QRHandler serves /api/qr.  It does not touch the database.
type QRHandler struct {
    Codes BatchQR
}

func NewQRHandler(codes BatchQR) *QRHandler { return &QRHandler{Codes: codes} }

// Batch returns {"qr": "data:image/png;base64,..."} encoding {"batchId":n}.
func (h *QRHandler) Batch(c echo.Context) error {
    id, ok := parseID(c, "batchId")
    if !ok {
        return badRequest(c, "Invalid batch ID")
    }
    url, err := h.Codes.Batch(id)
    if err != nil {
        c.Logger().Errorf("qr batch %d: %v", id, err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to generate QR code"})
    }
    return c.JSON(http.StatusOK, echo.Map{"qr": url})
}
