package indexing

import (
	"context"

	"pcsteps/internal/services/twelvelabs"
	"pcsteps/internal/services/ytdlp"
	"pcsteps/internal/videocache"
)

// Service is the subset of the indexing service API the client uses.
type Service interface {
	FindIndex(ctx context.Context, name string) (twelvelabs.Index, bool, error)
	CreateIndex(ctx context.Context, name, model string, options []string) (twelvelabs.Index, error)
	CreateTask(ctx context.Context, indexID, filePath string) (twelvelabs.Task, error)
	GetTask(ctx context.Context, taskID string) (twelvelabs.Task, error)
	GetVideo(ctx context.Context, indexID, videoID string) (twelvelabs.Video, error)
	Search(ctx context.Context, req twelvelabs.SearchRequest) ([]twelvelabs.Clip, error)
}

// VideoCache materializes a source video on local disk.
type VideoCache interface {
	Fetch(ctx context.Context, url, videoID string, progress func(ytdlp.ProgressUpdate)) (videocache.Entry, error)
}

// Upload is the result of UploadVideo.
type Upload struct {
	SourceID  string `json:"source_id"`
	TaskID    string `json:"task_id"`
	VideoID   string `json:"video_id"`
	State     State  `json:"state"`
	LocalPath string `json:"local_path"`
	// Cached is true when the local file came from the video cache.
	Cached bool `json:"cached"`
}

// Hit is one normalized search result.
type Hit struct {
	VideoID    string   `json:"video_id"`
	Score      float64  `json:"score"`
	Confidence string   `json:"confidence"`
	Start      float64  `json:"start"`
	End        float64  `json:"end"`
	Modules    []Module `json:"modules"`
}

// Module carries one modality's evidence for a hit.
type Module struct {
	Type         string     `json:"type"`
	Visual       []Evidence `json:"visual"`
	Conversation []Evidence `json:"conversation"`
}

// Evidence is a single textual evidence item.
type Evidence struct {
	Value string `json:"value"`
}

func hitFromClip(clip twelvelabs.Clip) Hit {
	hit := Hit{
		VideoID:    clip.VideoID,
		Score:      clip.Score,
		Confidence: clip.Confidence,
		Start:      clip.Start,
		End:        clip.End,
		Modules:    make([]Module, 0, len(clip.Modules)),
	}
	for _, m := range clip.Modules {
		module := Module{Type: m.Type}
		for _, v := range m.Visual {
			module.Visual = append(module.Visual, Evidence{Value: v.Value})
		}
		for _, c := range m.Conversation {
			module.Conversation = append(module.Conversation, Evidence{Value: c.Value})
		}
		hit.Modules = append(hit.Modules, module)
	}
	return hit
}
