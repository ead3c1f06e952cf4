package server

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/xob0t/covergen/pkg/batch"
	"github.com/xob0t/covergen/pkg/caption"
	"github.com/xob0t/covergen/pkg/config"
	"github.com/xob0t/covergen/pkg/framesource"
	"github.com/xob0t/covergen/pkg/imageio"
	"github.com/xob0t/covergen/pkg/logging"
)

func (s *Server) handleHealth(c *gin.Context) {
	binaries := gin.H{}
	healthy := true
	for _, st := range framesource.CheckBinaries(framesource.Requirements()) {
		binaries[st.Command] = st.Available
		if !st.Available {
			healthy = false
		}
	}
	status := "healthy"
	if !healthy {
		status = "degraded"
	}
	c.JSON(http.StatusOK, gin.H{"status": status, "binaries": binaries})
}

// handleRender captions the multipart "image" with the "title" field.
// Optional fields override the configured render settings.
func (s *Server) handleRender(c *gin.Context) {
	header, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing image file"})
		return
	}
	title := c.PostForm("title")

	render, err := s.renderFromForm(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ext := imageio.DefaultExt
	if f := c.PostForm("format"); f != "" {
		ext = "." + strings.TrimPrefix(strings.ToLower(f), ".")
		if !imageio.SupportedExt(ext) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "format must be jpg or png"})
			return
		}
	}

	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read image"})
		return
	}
	defer file.Close()
	img, err := imageio.Decode(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	font, err := s.coord.Fonts.Get(render.FontPath)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	style, err := render.Style()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	captioner, err := caption.New(font, style)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer captioner.Close()

	canvas := imageio.ToDrawable(imageio.FitWidth(img, s.cfg.Batch.MaxWidth))
	block, err := captioner.Apply(canvas, title)
	if err != nil {
		s.logger.Error("render failed", logging.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var buf bytes.Buffer
	if err := imageio.Encode(&buf, canvas, ext, s.cfg.Batch.Quality); err != nil {
		s.logger.Error("encode failed", logging.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Header("X-Caption-Lines", strconv.Itoa(len(block.Lines)))
	c.Data(http.StatusOK, mime.TypeByExtension(ext), buf.Bytes())
}

// renderFromForm applies the optional form fields to the configured
// render settings and validates the result.
func (s *Server) renderFromForm(c *gin.Context) (config.Render, error) {
	render := s.cfg.Render

	if id := c.PostForm("font_id"); id != "" {
		a, ok := s.fonts.get(id)
		if !ok {
			return render, errors.New("unknown font_id " + strconv.Quote(id))
		}
		render.FontPath = a.path
	}
	if v := c.PostForm("text_color"); v != "" {
		render.TextColor = v
	}
	if v := c.PostForm("stroke_color"); v != "" {
		render.StrokeColor = v
	}

	ints := []struct {
		field string
		dst   *int
	}{
		{"font_size", &render.FontSize},
		{"stroke_offset", &render.StrokeOffset},
	}
	for _, f := range ints {
		v := c.PostForm(f.field)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return render, errors.New(f.field + " must be an integer")
		}
		*f.dst = n
	}
	if v := c.PostForm("padding_ratio"); v != "" {
		ratio, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return render, errors.New("padding_ratio must be a number")
		}
		render.PaddingRatio = ratio
	}

	if err := render.Validate(); err != nil {
		return render, err
	}
	return render, nil
}

type batchRequest struct {
	Folder      string   `json:"folder" binding:"required"`
	SeekSeconds *float64 `json:"seek_seconds"`
	Workers     int      `json:"workers"`
	Overwrite   *bool    `json:"overwrite"`
}

// handleBatch runs a folder batch synchronously. Item failures are part of
// the report and still answer 200.
func (s *Server) handleBatch(c *gin.Context) {
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	opts := batch.OptionsFromConfig(&s.cfg)
	opts.Folder = req.Folder
	if req.SeekSeconds != nil {
		opts.Seek = *req.SeekSeconds
	}
	if req.Workers > 0 {
		opts.Workers = req.Workers
	}
	if req.Overwrite != nil {
		opts.Overwrite = *req.Overwrite
	}

	report, err := s.coord.Run(c.Request.Context(), opts)
	switch {
	case errors.Is(err, batch.ErrConfiguration):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case report == nil:
		s.logger.Error("batch failed", logging.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		s.logger.Info("batch finished with failures", slog.Int("failed", report.Failed))
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) handleUploadFont(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no file"})
		return
	}
	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read file"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read file"})
		return
	}
	a, err := s.fonts.add(header.Filename, data)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.logger.Info("font uploaded", slog.String("id", a.ID), slog.String("name", a.Name))
	c.JSON(http.StatusCreated, a)
}

func (s *Server) handleListFonts(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"fonts": s.fonts.list()})
}

func (s *Server) handleDeleteFont(c *gin.Context) {
	if !s.fonts.remove(c.Param("id")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "font not found"})
		return
	}
	c.Status(http.StatusNoContent)
}
