package lab

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	tagQueueKey     = "tag:queue"
	tagResultPrefix = "tag:result:"
	tagResultTTL    = time.Hour
	popTimeout      = 5 * time.Second
)

// TagJob - one enqueued batch tagging request
type TagJob struct {
	JobID     string   `json:"jobId"`
	ImageURLs []string `json:"imageUrls"`
}

// TagJobResult - what the worker writes back for a job
type TagJobResult struct {
	JobID  string              `json:"jobId"`
	Status string              `json:"status"` // done | failed
	Tags   map[string][]string `json:"tags"`
}

// Queue - Redis-backed batch tagging queue
type Queue struct {
	client *redis.Client
	tagger *Tagger
}

// NewQueue - create the tagging queue
func NewQueue(client *redis.Client, tagger *Tagger) *Queue {
	return &Queue{client: client, tagger: tagger}
}

// Enqueue - push a batch job for the worker
func (q *Queue) Enqueue(ctx context.Context, job TagJob) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return err
	}
	if err := q.client.LPush(ctx, tagQueueKey, payload).Err(); err != nil {
		return fmt.Errorf("enqueue failed: %w", err)
	}
	log.Printf("📦 [Lab] Enqueued tag job %s (%d images)", job.JobID, len(job.ImageURLs))
	return nil
}

// Result - fetch a finished job's result; nil when still pending or expired
func (q *Queue) Result(ctx context.Context, jobID string) (*TagJobResult, error) {
	raw, err := q.client.Get(ctx, tagResultPrefix+jobID).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var result TagJobResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// StartWorker - blocking consume loop; run it on its own goroutine. Returns
// when ctx is cancelled.
func (q *Queue) StartWorker(ctx context.Context) {
	log.Println("🚀 [Lab] Tag worker started")
	for {
		select {
		case <-ctx.Done():
			log.Println("🛑 [Lab] Tag worker stopped")
			return
		default:
		}

		values, err := q.client.BRPop(ctx, popTimeout, tagQueueKey).Result()
		if err == redis.Nil || ctx.Err() != nil {
			continue
		}
		if err != nil {
			log.Printf("⚠️  [Lab] Queue pop failed: %v", err)
			time.Sleep(time.Second)
			continue
		}
		if len(values) < 2 {
			continue
		}

		var job TagJob
		if err := json.Unmarshal([]byte(values[1]), &job); err != nil {
			log.Printf("⚠️  [Lab] Dropping unreadable job: %v", err)
			continue
		}

		q.process(ctx, job)
	}
}

func (q *Queue) process(ctx context.Context, job TagJob) {
	log.Printf("🏷️  [Lab] Tagging job %s (%d images)", job.JobID, len(job.ImageURLs))

	result := TagJobResult{
		JobID:  job.JobID,
		Status: "done",
		Tags:   make(map[string][]string, len(job.ImageURLs)),
	}
	for _, url := range job.ImageURLs {
		result.Tags[url] = q.tagger.Tag(ctx, url)
	}

	payload, err := json.Marshal(result)
	if err != nil {
		log.Printf("❌ [Lab] Job %s result marshal failed: %v", job.JobID, err)
		return
	}
	if err := q.client.Set(ctx, tagResultPrefix+job.JobID, payload, tagResultTTL).Err(); err != nil {
		log.Printf("❌ [Lab] Job %s result write failed: %v", job.JobID, err)
		return
	}
	log.Printf("✅ [Lab] Job %s done", job.JobID)
}
