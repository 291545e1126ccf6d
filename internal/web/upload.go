package web

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/desertthunder/vidstyle/internal/media"
	"github.com/desertthunder/vidstyle/internal/server"
	"github.com/desertthunder/vidstyle/internal/shared"
)

const (
	uploadField = "video"
	sniffLen    = 512
	// multipart framing and other form fields on top of the file itself
	formOverhead = 1 << 20
)

// handleUploadMedia streams the "video" part of a multipart body straight into the session's preview store.
func (h *Handler) handleUploadMedia(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.session(w, r)
	if !ok {
		return
	}

	if h.maxUpload > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload+formOverhead)
	}

	part, err := videoPart(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	defer part.Close()

	body := bufio.NewReaderSize(part, sniffLen)
	head, err := body.Peek(sniffLen)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		h.writeError(w, readErr(err))
		return
	}

	upload := media.Upload{
		Name:        part.FileName(),
		ContentType: media.ResolveContentType(part.Header.Get("Content-Type"), part.FileName(), head),
		Body:        body,
	}

	if err := ctrl.SelectMedia(upload); err != nil {
		h.writeError(w, uploadErr(err))
		return
	}

	h.logger.Debug("media uploaded", "session", ctrl.ID(), "name", upload.Name, "type", upload.ContentType)
	server.WriteJSON(w, http.StatusOK, ctrl.Snapshot())
}

// videoPart advances the multipart reader to the first file part named "video".
func videoPart(r *http.Request) (*multipart.Part, error) {
	mr, err := r.MultipartReader()
	if err != nil {
		return nil, fmt.Errorf("%w: expected multipart/form-data", shared.ErrInvalidInput)
	}

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: %s", shared.ErrMissingArgument, uploadField)
		}
		if err != nil {
			return nil, readErr(err)
		}
		if part.FormName() == uploadField && part.FileName() != "" {
			return part, nil
		}
		part.Close()
	}
}

// uploadErr keeps the body-limit error recognizable after wrapping.
func uploadErr(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return fmt.Errorf("%w: %v", shared.ErrMediaTooLarge, err)
	}
	return err
}

// readErr classifies a failure reading the request body as a client error.
func readErr(err error) error {
	if err = uploadErr(err); errors.Is(err, shared.ErrMediaTooLarge) {
		return err
	}
	return fmt.Errorf("%w: malformed upload: %v", shared.ErrInvalidInput, err)
}
