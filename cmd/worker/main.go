package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"onlyu-media/internal/bootstrap"
	"onlyu-media/internal/cleanup"
	"onlyu-media/internal/content"
	"onlyu-media/internal/objects"
	"onlyu-media/internal/shared/config"
	"onlyu-media/internal/shared/metrics"
	"onlyu-media/internal/shared/telemetry"
)

const defaultSQSRegion = "us-east-1"

func main() {
	cfg, err := config.Load()
	if err != nil && !errors.Is(err, config.ErrMissingSessionSecret) {
		log.Fatalf("load config: %v", err)
	}
	telemetry.SetLevel(cfg.LogLevel)

	queueURL := strings.TrimSpace(cfg.CleanupQueueURL)
	if queueURL == "" {
		log.Fatal("CLEANUP_SQS_QUEUE_URL is required")
	}
	region := strings.TrimSpace(cfg.AWSRegion)
	if region == "" {
		region = defaultSQSRegion
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		log.Fatalf("load aws config: %v", err)
	}
	var sqsClient sqsAPI = sqs.NewFromConfig(awsCfg)

	store, closeStore, err := bootstrap.BuildStore(ctx, cfg)
	if err != nil {
		log.Fatalf("build object store: %v", err)
	}
	if closeStore != nil {
		defer closeStore()
	}
	remover := objects.NewService(store, bootstrap.ObjectsConfig(cfg))

	var purger cleanup.Purger
	sqlDB, err := bootstrap.BuildWorkerDB(ctx, cfg)
	if err != nil {
		telemetry.Warn("worker.cleanup.db_unavailable", map[string]any{"error": err.Error()})
	} else if sqlDB != nil {
		purger = &content.PGRepo{DB: sqlDB}
	}

	concurrency := max(1, cfg.WorkerConcurrency)
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	telemetry.Info("worker.started", map[string]any{
		"queue":       queueURL,
		"concurrency": concurrency,
		"visibility":  cfg.CleanupVisibilitySeconds,
		"purge":       purger != nil,
	})

pollLoop:
	for {
		select {
		case <-ctx.Done():
			break pollLoop
		default:
		}

		resp, err := sqsClient.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
			QueueUrl:            aws.String(queueURL),
			MaxNumberOfMessages: 10,
			WaitTimeSeconds:     20,
			VisibilityTimeout:   int32(cfg.CleanupVisibilitySeconds),
			AttributeNames:      []sqstypes.QueueAttributeName{sqstypes.QueueAttributeName("ApproximateReceiveCount")},
		})
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
				break pollLoop
			}
			telemetry.Error("worker.cleanup.receive_failed", map[string]any{"error": err.Error()})
			continue
		}

		for _, msg := range resp.Messages {
			select {
			case <-ctx.Done():
				break pollLoop
			case sem <- struct{}{}:
			}
			metrics.RecordCleanupJob("received")
			wg.Add(1)
			go func(m sqstypes.Message) {
				defer wg.Done()
				defer func() { <-sem }()
				handleMessage(ctx, sqsClient, queueURL, remover, purger, m)
			}(msg)
		}
	}

	telemetry.Info("worker.shutdown", map[string]any{"timeout": cfg.WorkerShutdownTimeout.String()})
	waitDone := make(chan struct{})
	go func() {
		wg.Wait()
		close(waitDone)
	}()
	select {
	case <-waitDone:
	case <-time.After(cfg.WorkerShutdownTimeout):
		telemetry.Warn("worker.shutdown_timeout", map[string]any{"in_flight": len(sem)})
	}
}

type sqsAPI interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

func handleMessage(ctx context.Context, client sqsAPI, queueURL string, remover cleanup.Remover, purger cleanup.Purger, msg sqstypes.Message) {
	body := aws.ToString(msg.Body)

	decoded, meta, err := cleanup.ParseMessage(body)
	if err != nil {
		fields := baseFields(msg, "", "")
		fields["body_len"] = meta.BodyLen
		if meta.BodySHA != "" {
			fields["body_sha256"] = meta.BodySHA
		}
		event := "worker.cleanup.decode_failed"
		var emptyErr cleanup.ErrEmptyBody
		var missingErr cleanup.ErrMissingObjectPath
		switch {
		case errors.As(err, &emptyErr):
			event = "worker.cleanup.empty_body"
		case errors.As(err, &missingErr):
			event = "worker.cleanup.missing_path"
			if missingErr.RequestID != "" {
				fields["request_id"] = missingErr.RequestID
			}
		default:
			fields["error"] = err.Error()
		}
		telemetry.Error(event, fields)
		if deleteMessage(ctx, client, queueURL, msg, "", "") {
			metrics.RecordCleanupJob("unrecoverable")
		}
		return
	}

	telemetry.Info("worker.cleanup.received", baseFields(msg, decoded.ObjectPath, decoded.RequestID))

	outcome, err := cleanup.HandleMessage(ctx, remover, purger, decoded)
	if err != nil {
		fields := baseFields(msg, decoded.ObjectPath, decoded.RequestID)
		fields["error"] = err.Error()
		telemetry.Error("worker.cleanup.failed", fields)
		metrics.RecordCleanupJob("failed")
		return
	}

	if deleteMessage(ctx, client, queueURL, msg, decoded.ObjectPath, decoded.RequestID) {
		fields := baseFields(msg, decoded.ObjectPath, decoded.RequestID)
		fields["outcome"] = string(outcome)
		telemetry.Info("worker.cleanup.completed", fields)
		metrics.RecordCleanupJob(string(outcome))
	}
}

func deleteMessage(ctx context.Context, client sqsAPI, queueURL string, msg sqstypes.Message, objectPath, requestID string) bool {
	receipt := aws.ToString(msg.ReceiptHandle)
	if receipt == "" {
		fields := baseFields(msg, objectPath, requestID)
		fields["error"] = "missing receipt handle"
		telemetry.Error("worker.cleanup.delete_failed", fields)
		return false
	}
	if _, err := client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(queueURL),
		ReceiptHandle: aws.String(receipt),
	}); err != nil {
		fields := baseFields(msg, objectPath, requestID)
		fields["error"] = err.Error()
		telemetry.Error("worker.cleanup.delete_failed", fields)
		return false
	}
	return true
}

func baseFields(msg sqstypes.Message, objectPath, requestID string) map[string]any {
	fields := map[string]any{
		"object_path":    objectPath,
		"sqs_message_id": aws.ToString(msg.MessageId),
		"receive_count":  receiveCount(msg),
	}
	if strings.TrimSpace(requestID) != "" {
		fields["request_id"] = requestID
	}
	return fields
}

func receiveCount(msg sqstypes.Message) int {
	if msg.Attributes == nil {
		return 0
	}
	raw := msg.Attributes["ApproximateReceiveCount"]
	if raw == "" {
		return 0
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return parsed
}
