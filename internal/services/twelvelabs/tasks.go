package twelvelabs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Task status values reported by the service.
const (
	TaskStatusValidating = "validating"
	TaskStatusPending    = "pending"
	TaskStatusQueued     = "queued"
	TaskStatusIndexing   = "indexing"
	TaskStatusReady      = "ready"
	TaskStatusFailed     = "failed"
	TaskStatusError      = "error"
)

// Task is an upload/indexing task.
type Task struct {
	ID      string `json:"_id"`
	IndexID string `json:"index_id"`
	VideoID string `json:"video_id"`
	Status  string `json:"status"`
	// Raw holds the response body for diagnostics when the task fails.
	Raw string `json:"-"`
}

// Video is an indexed video's status record.
type Video struct {
	ID             string         `json:"_id"`
	IndexedAt      *time.Time     `json:"indexed_at"`
	SystemMetadata SystemMetadata `json:"system_metadata"`
}

// SystemMetadata carries service-reported facts about an uploaded video.
type SystemMetadata struct {
	Filename string  `json:"filename"`
	Duration float64 `json:"duration"`
}

// Indexed reports whether the video has finished indexing.
func (v Video) Indexed() bool {
	return v.IndexedAt != nil && !v.IndexedAt.IsZero()
}

// CreateTask uploads a local video file into the index. The body is streamed
// so large files are never held in memory.
func (c *Client) CreateTask(ctx context.Context, indexID, filePath string) (Task, error) {
	if strings.TrimSpace(indexID) == "" {
		return Task{}, errors.New("twelvelabs create task: index id required")
	}
	file, err := os.Open(filePath)
	if err != nil {
		return Task{}, fmt.Errorf("twelvelabs create task: open video: %w", err)
	}
	defer file.Close()

	endpoint, err := c.endpoint("tasks")
	if err != nil {
		return Task{}, err
	}

	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)
	go func() {
		pw.CloseWithError(writeTaskForm(writer, indexID, filePath, file))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, pr)
	if err != nil {
		_ = pr.Close()
		return Task{}, fmt.Errorf("twelvelabs create task: new request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var task Task
	if err := c.doJSON(ctx, "create task", c.uploadClient, req, &task); err != nil {
		_ = pr.Close()
		return Task{}, err
	}
	if strings.TrimSpace(task.ID) == "" {
		return Task{}, errors.New("twelvelabs create task: response missing id")
	}
	return task, nil
}

func writeTaskForm(writer *multipart.Writer, indexID, filePath string, file io.Reader) error {
	if err := writer.WriteField("index_id", indexID); err != nil {
		return err
	}
	part, err := writer.CreateFormFile("video_file", filepath.Base(filePath))
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, file); err != nil {
		return err
	}
	return writer.Close()
}

// GetTask fetches the current state of an upload task.
func (c *Client) GetTask(ctx context.Context, taskID string) (Task, error) {
	if strings.TrimSpace(taskID) == "" {
		return Task{}, errors.New("twelvelabs get task: task id required")
	}
	endpoint, err := c.endpoint("tasks", taskID)
	if err != nil {
		return Task{}, err
	}
	var raw rawCapture
	if err := c.getJSON(ctx, "get task", endpoint, &raw); err != nil {
		return Task{}, err
	}
	var task Task
	if err := raw.decode(&task); err != nil {
		return Task{}, fmt.Errorf("twelvelabs get task: decode response: %w", err)
	}
	task.Raw = raw.String()
	return task, nil
}

// GetVideo fetches an indexed video's status.
func (c *Client) GetVideo(ctx context.Context, indexID, videoID string) (Video, error) {
	if strings.TrimSpace(indexID) == "" || strings.TrimSpace(videoID) == "" {
		return Video{}, errors.New("twelvelabs get video: index id and video id required")
	}
	endpoint, err := c.endpoint("indexes", indexID, "videos", videoID)
	if err != nil {
		return Video{}, err
	}
	var video Video
	if err := c.getJSON(ctx, "get video", endpoint, &video); err != nil {
		return Video{}, err
	}
	return video, nil
}
