package endpoints

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cogc-planning/bulletin/internal/api"
	"github.com/cogc-planning/bulletin/internal/pdftext"
	"github.com/cogc-planning/bulletin/internal/svcctx"
)

// maxUploadSize bounds bulletin uploads. Rosters are a handful of pages; 20MB
// leaves room for scanner bloat.
const maxUploadSize = 20 << 20

// ParseBulletinEndpoint handles POST /api/bulletins/parse with a multipart
// PDF upload. The parse runs synchronously; a bulletin is small enough that
// job scheduling would be overhead.
type ParseBulletinEndpoint struct{}

var _ api.Endpoint = (*ParseBulletinEndpoint)(nil)

func (e *ParseBulletinEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/bulletins/parse", e.handler
}

func (e *ParseBulletinEndpoint) RequiresInit() bool { return true }

func (e *ParseBulletinEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("failed to parse form: %v", err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["file"]
	if len(files) == 0 {
		writeError(w, http.StatusBadRequest, "no file uploaded")
		return
	}
	fh := files[0]
	if !strings.HasSuffix(strings.ToLower(fh.Filename), ".pdf") {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("file %s is not a PDF", fh.Filename))
		return
	}

	src, err := fh.Open()
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to open uploaded file: %v", err))
		return
	}
	content, err := io.ReadAll(src)
	src.Close()
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to read uploaded file: %v", err))
		return
	}

	pipeline := svcctx.PipelineFrom(r.Context())
	if pipeline == nil {
		writeError(w, http.StatusServiceUnavailable, "parse pipeline not initialized")
		return
	}

	logger := svcctx.LoggerFrom(r.Context())
	if logger != nil {
		pages, perr := pdftext.PageCount(content)
		if perr != nil {
			logger.Warn("uploaded document page count unavailable", "file", fh.Filename, "error", perr)
		} else {
			logger.Info("bulletin upload received", "file", fh.Filename, "pages", pages, "bytes", len(content))
		}
	}

	result := pipeline.Parse(r.Context(), content)
	status := http.StatusOK
	if !result.Success {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, result)
}

func (e *ParseBulletinEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "parse <bulletin.pdf>",
		Short: "Parse a bulletin PDF via the running server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var result map[string]any
			if err := client.PostFile(cmd.Context(), "/api/bulletins/parse", "file", args[0], &result); err != nil {
				return err
			}
			return api.Output(result)
		},
	}
}
