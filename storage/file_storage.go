package storage

import (
	"context"
	"crypto/sha1"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jeffrin-samuel/RoyalRetreats-FullStack/domain"
	apperrors "github.com/jeffrin-samuel/RoyalRetreats-FullStack/errors"
)

var allowedFormats = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

// Uploader stores listing images with an external provider and hands back
// the public URL plus the storage key needed to reference them later.
type Uploader interface {
	UploadImage(ctx context.Context, filename string, content []byte) (*domain.Image, error)
}

type FileStorage struct {
	cloudName string
	apiKey    string
	apiSecret string
	folder    string
	client    *http.Client
	logger    *logrus.Logger
	tracer    trace.Tracer
}

func New(cloudName, apiKey, apiSecret, folder string, logger *logrus.Logger, tracer trace.Tracer) *FileStorage {
	return &FileStorage{
		cloudName: cloudName,
		apiKey:    apiKey,
		apiSecret: apiSecret,
		folder:    folder,
		client:    &http.Client{Timeout: 30 * time.Second},
		logger:    logger,
		tracer:    tracer,
	}
}

func (fs *FileStorage) UploadImage(ctx context.Context, filename string, content []byte) (*domain.Image, error) {
	ctx, span := fs.tracer.Start(ctx, "FileStorage.UploadImage")
	defer span.End()

	ext := strings.ToLower(path.Ext(filename))
	if !allowedFormats[ext] {
		return nil, &domain.ValidationError{Fields: []domain.FieldError{{
			Field:   "image",
			Message: "Image must be png, jpg or jpeg",
		}}}
	}

	publicID := uuid.New().String()
	if fs.folder != "" {
		publicID = fs.folder + "/" + publicID
	}

	endpoint := "https://api.cloudinary.com/v1_1/" + fs.cloudName + "/image/upload"

	form := url.Values{}
	form.Add("file", "data:image/"+strings.TrimPrefix(ext, ".")+";base64,"+base64.StdEncoding.EncodeToString(content))
	form.Add("api_key", fs.apiKey)
	form.Add("public_id", publicID)

	timestamp := fmt.Sprintf("%d", time.Now().Unix())
	form.Add("timestamp", timestamp)

	// Cloudinary signs the sorted params with SHA1 and the api secret
	signatureString := fmt.Sprintf("public_id=%s&timestamp=%s%s", publicID, timestamp, fs.apiSecret)
	form.Add("signature", fmt.Sprintf("%x", sha1.Sum([]byte(signatureString))))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := fs.client.Do(req)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		fs.logger.WithError(err).Error("Image upload request failed")
		return nil, apperrors.New(apperrors.ErrUpstream, "image upload failed")
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if res.StatusCode != http.StatusOK {
		span.SetStatus(codes.Error, fmt.Sprintf("upload status %d", res.StatusCode))
		fs.logger.WithField("status", res.StatusCode).Error("Image upload rejected")
		return nil, apperrors.New(apperrors.ErrUpstream, "image upload failed")
	}

	var uploadRes struct {
		SecureURL string `json:"secure_url"`
		URL       string `json:"url"`
		PublicID  string `json:"public_id"`
	}
	if err := json.Unmarshal(body, &uploadRes); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	imageURL := uploadRes.SecureURL
	if imageURL == "" {
		imageURL = uploadRes.URL
	}
	if imageURL == "" {
		return nil, apperrors.New(apperrors.ErrUpstream, "no URL returned from image upload")
	}

	return &domain.Image{
		URL:      imageURL,
		Filename: uploadRes.PublicID,
	}, nil
}
