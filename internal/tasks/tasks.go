package tasks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // registered for image.Decode
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/hibiken/asynq"
	"github.com/nfnt/resize"
	"github.com/redis/go-redis/v9"

	"github.com/fanfcorp/acp-market/internal/config"
	"github.com/fanfcorp/acp-market/internal/email"
	"github.com/fanfcorp/acp-market/internal/storage"
)

// Enqueuer is the subset of the asynq client used to queue tasks.
type Enqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// LogoRecorder persists the storage key and public URL of a processed logo.
type LogoRecorder interface {
	SetLogo(ctx context.Context, id, key, url string) error
}

// Task types handled by the background worker.
const (
	TypeEmailDelivery = "email:deliver"
	TypeLogoProcess   = "logo:process"
)

// logoFetchLimit caps how much of a remote logo is read.
const logoFetchLimit = 5 * 1024 * 1024

// --- Task Client (Enqueuing tasks) ---

func NewClient(rdb *redis.Client) *asynq.Client {
	return asynq.NewClient(asynq.RedisClientOpt{
		Addr:     rdb.Options().Addr,
		Password: rdb.Options().Password,
		DB:       rdb.Options().DB,
	})
}

// EmailTaskPayload describes one outbound email.
type EmailTaskPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// NewEmailTask builds an email delivery task.
func NewEmailTask(to, subject, body string) (*asynq.Task, error) {
	payload, err := json.Marshal(EmailTaskPayload{To: to, Subject: subject, Body: body})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal email task payload: %w", err)
	}
	return asynq.NewTask(TypeEmailDelivery, payload), nil
}

// LogoTaskPayload points the worker at a remote logo to re-host.
type LogoTaskPayload struct {
	ServerID string `json:"server_id"`
	LogoURL  string `json:"logo_url"`
}

// NewLogoTask builds a logo re-hosting task.
func NewLogoTask(serverID, logoURL string) (*asynq.Task, error) {
	payload, err := json.Marshal(LogoTaskPayload{ServerID: serverID, LogoURL: logoURL})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal logo task payload: %w", err)
	}
	return asynq.NewTask(TypeLogoProcess, payload, asynq.Queue("low")), nil
}

// --- Task Server (Processing tasks) ---

// TaskProcessor handles the processing of tasks. It holds the dependencies
// the task handlers need.
type TaskProcessor struct {
	cfg            *config.Config
	emailSender    email.Sender
	storageService storage.IS3Storage // nil when S3 is not configured
	logoRecorder   LogoRecorder
	httpClient     *http.Client
}

func NewTaskProcessor(
	cfg *config.Config,
	emailSender email.Sender,
	storageService storage.IS3Storage,
	logoRecorder LogoRecorder,
) *TaskProcessor {
	return &TaskProcessor{
		cfg:            cfg,
		emailSender:    emailSender,
		storageService: storageService,
		logoRecorder:   logoRecorder,
		httpClient:     &http.Client{Timeout: 15 * time.Second},
	}
}

// SetupServer configures an Asynq server with the worker handlers
// registered. The caller runs it.
func SetupServer(rdb *redis.Client, processor *TaskProcessor) (*asynq.Server, *asynq.ServeMux) {
	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     rdb.Options().Addr,
			Password: rdb.Options().Password,
			DB:       rdb.Options().DB,
		},
		asynq.Config{
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				log.Printf("[Asynq Error] Task Type: %s, Payload: %s, Error: %v", task.Type(), string(task.Payload()), err)
			}),
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeEmailDelivery, processor.HandleEmailDeliveryTask)
	mux.HandleFunc(TypeLogoProcess, processor.HandleLogoProcessTask)
	log.Println("Registered background task handlers.")

	return srv, mux
}

// --- Task Handlers ---

// HandleEmailDeliveryTask sends one queued email.
func (p *TaskProcessor) HandleEmailDeliveryTask(ctx context.Context, t *asynq.Task) error {
	var payload EmailTaskPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal email task payload: %v: %w", err, asynq.SkipRetry)
	}

	fromAddress := p.cfg.SmtpFromAddress

	// Assemble the raw message with the essential headers.
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("To: %s\r\n", payload.To))
	sb.WriteString(fmt.Sprintf("From: %s\r\n", fromAddress))
	sb.WriteString(fmt.Sprintf("Subject: %s\r\n", payload.Subject))
	sb.WriteString("Date: " + time.Now().Format(time.RFC1123Z) + "\r\n")
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	sb.WriteString("\r\n")
	sb.WriteString(payload.Body)
	sb.WriteString("\r\n")

	if err := p.emailSender.Send(ctx, []string{payload.To}, payload.Subject, []byte(sb.String())); err != nil {
		log.Printf("Email sending failed for %s: %v", payload.To, err)
		return err
	}

	log.Printf("Email task processed: To=%s, Subject=%s", payload.To, payload.Subject)
	return nil
}

// HandleLogoProcessTask fetches a submitted logo, normalises it and re-hosts
// it on S3 so listings never hot-link third-party images.
func (p *TaskProcessor) HandleLogoProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload LogoTaskPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal logo task payload: %v: %w", err, asynq.SkipRetry)
	}

	if p.storageService == nil {
		log.Printf("S3 storage not configured, skipping logo task for server %s", payload.ServerID)
		return nil
	}

	log.Printf("Processing logo task: ServerID=%s, URL=%s", payload.ServerID, payload.LogoURL)

	imgData, err := p.fetchLogo(ctx, payload.LogoURL)
	if err != nil {
		return err
	}

	img, format, err := image.Decode(bytes.NewReader(imgData))
	if err != nil {
		log.Printf("Error decoding logo for server %s: %v", payload.ServerID, err)
		return fmt.Errorf("unsupported image format or corrupt image: %w", asynq.SkipRetry)
	}
	log.Printf("Decoded logo for server %s, format: %s, size: %dx%d", payload.ServerID, format, img.Bounds().Dx(), img.Bounds().Dy())

	maxDim := uint(p.cfg.LogoMaxDimension)
	if uint(img.Bounds().Dx()) > maxDim || uint(img.Bounds().Dy()) > maxDim {
		img = resize.Thumbnail(maxDim, maxDim, img, resize.Lanczos3)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85}); err != nil {
		return fmt.Errorf("failed to encode processed logo: %w", err)
	}

	key := fmt.Sprintf("logos/%s.jpg", payload.ServerID)
	if err := p.storageService.Upload(ctx, key, "image/jpeg", buf.Bytes()); err != nil {
		return err
	}

	if err := p.logoRecorder.SetLogo(ctx, payload.ServerID, key, p.storageService.PublicURL(key)); err != nil {
		return fmt.Errorf("failed to record logo on server %s: %w", payload.ServerID, err)
	}

	log.Printf("Logo task processed: ServerID=%s, Key=%s", payload.ServerID, key)
	return nil
}

func (p *TaskProcessor) fetchLogo(ctx context.Context, logoURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, logoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid logo URL %s: %v: %w", logoURL, err, asynq.SkipRetry)
	}
	req.Header.Set("User-Agent", "ACPMarketBot/1.0")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch logo %s: %w", logoURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return nil, fmt.Errorf("logo %s returned status %d: %w", logoURL, resp.StatusCode, asynq.SkipRetry)
		}
		return nil, fmt.Errorf("logo %s returned status %d", logoURL, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, logoFetchLimit))
	if err != nil {
		return nil, fmt.Errorf("failed to read logo %s: %w", logoURL, err)
	}
	return data, nil
}
