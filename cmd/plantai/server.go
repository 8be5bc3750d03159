package main

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"html/template"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/plantai/plantai"
	"github.com/plantai/plantai/diagnosis"
)

//go:embed tmpl/*.html
var tmplFS embed.FS

var indexTmpl = template.Must(template.ParseFS(tmplFS, "tmpl/index.html"))

type Server struct {
	hs     *http.Server
	d      *plantai.Diagnoser
	logger zerolog.Logger
}

func NewServer(d *plantai.Diagnoser, port string, logger zerolog.Logger) *Server {
	srv := &Server{
		d:      d,
		logger: logger.With().Str("component", "http").Logger(),
	}

	srv.hs = &http.Server{
		Addr:    net.JoinHostPort("0.0.0.0", port),
		Handler: srv.serveHandler(),
	}

	return srv
}

func (s *Server) Start() error {
	return s.hs.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.hs.Shutdown(ctx)
}

func (s *Server) serveHandler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost", "http://localhost:8501"},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:     []string{"*"},
		AllowCredentials: true,
	}))

	r.GET("/", s.handleRoot)
	r.GET("/app", s.handleApp)
	r.POST("/predict", s.handlePredict)

	return r
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		s.logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Msg("request")
	}
}

func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Welcome to the PlantAI Backend (Hugging Face Version with Auto-Retry).",
	})
}

func (s *Server) handleApp(c *gin.Context) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	indexTmpl.Execute(c.Writer, nil)
}

func (s *Server) handlePredict(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "File provided is not a valid image."})
		return
	}
	if ct := fh.Header.Get("Content-Type"); !strings.HasPrefix(ct, "image/") {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "File provided is not a valid image."})
		return
	}

	data, err := readUpload(fh)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid or corrupted image file."})
		return
	}

	res, err := s.d.Diagnose(c.Request.Context(), data)
	if err != nil {
		if errors.Is(err, diagnosis.ErrUnauthorized) {
			c.JSON(http.StatusUnauthorized, gin.H{
				"detail": "Hugging Face API token is not configured. Please set the HUGGING_FACE_TOKEN environment variable.",
			})
			return
		}
		s.logger.Error().Err(err).Msg("diagnosis failed")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Diagnosis failed."})
		return
	}

	c.JSON(http.StatusOK, res)
}

// readUpload reads the multipart file and confirms the bytes decode as an
// image with a registered codec.
func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	if _, _, err := image.Decode(bytes.NewReader(data)); err != nil {
		return nil, diagnosis.ErrInvalidImage
	}

	return data, nil
}
