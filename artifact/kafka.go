package artifact

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/twmb/franz-go/pkg/kgo"

	. "jobpower/common"
)

// KafkaStore produces one record per job to a topic.  The record key is the job ID, so a compacted
// topic keeps the latest series per job; the value is the same JSON as in a DirStore file.  Every
// record carries a "run" header identifying the pipeline run that produced it.

type KafkaStore struct {
	client *kgo.Client
	topic  string
	runID  string
}

func NewKafkaStore(broker, topic, runID string) (*KafkaStore, error) {
	cl, err := kgo.NewClient(
		kgo.SeedBrokers(broker),
		kgo.DefaultProduceTopic(topic),
	)
	if err != nil {
		return nil, fmt.Errorf("Failed to create Kafka client for %s: %w", broker, err)
	}
	return &KafkaStore{client: cl, topic: topic, runID: runID}, nil
}

func (ks *KafkaStore) Put(ctx context.Context, a *Artifact) error {
	rec, err := ks.record(a)
	if err != nil {
		return err
	}
	if err := ks.client.ProduceSync(ctx, rec).FirstErr(); err != nil {
		return fmt.Errorf("%s: Failed to produce artifact for job %s: %w", ks.topic, a.JobID, err)
	}
	return nil
}

func (ks *KafkaStore) record(a *Artifact) (*kgo.Record, error) {
	blob, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return &kgo.Record{
		Topic: ks.topic,
		Key:   []byte(a.JobID),
		Value: blob,
		Headers: []kgo.RecordHeader{
			{Key: "run", Value: []byte(ks.runID)},
		},
	}, nil
}

func (ks *KafkaStore) Close() error {
	if err := ks.client.Flush(context.Background()); err != nil {
		Log.Warningf("%s: Flush failed on close: %v", ks.topic, err)
	}
	ks.client.Close()
	return nil
}
