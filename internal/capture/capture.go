// Package capture records the live room to the object store through LiveKit
// room-composite egress.
package capture

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/livekit/protocol/livekit"
	lksdk "github.com/livekit/server-sdk-go/v2"

	"github.com/raheva/mirror/internal/config"
	"github.com/raheva/mirror/internal/recording"
)

// egressClient is the slice of the LiveKit egress API the service uses.
type egressClient interface {
	StartRoomCompositeEgress(ctx context.Context, req *livekit.RoomCompositeEgressRequest) (*livekit.EgressInfo, error)
	StopEgress(ctx context.Context, req *livekit.StopEgressRequest) (*livekit.EgressInfo, error)
}

// Service implements recording.CaptureService on top of LiveKit egress,
// writing MP4 files straight into the S3-compatible store.
type Service struct {
	client  egressClient
	storage config.StorageConfig
}

// NewService builds an egress-backed capture service from config.
func NewService(lk config.LiveKitConfig, storage config.StorageConfig) (*Service, error) {
	if lk.URL == "" || lk.APIKey == "" || lk.APISecret == "" {
		return nil, fmt.Errorf("capture: livekit url, api key and api secret are required")
	}
	client := lksdk.NewEgressClient(lk.URL, lk.APIKey, lk.APISecret)
	return &Service{client: client, storage: storage}, nil
}

// StartJob begins a room-composite egress writing to outputKey. Quota
// exhaustion from the provider is reported as recording.ErrQuotaExhausted so
// callers can degrade instead of failing.
func (s *Service) StartJob(ctx context.Context, roomID, outputKey string) (string, error) {
	req := &livekit.RoomCompositeEgressRequest{
		RoomName: roomID,
		Layout:   "speaker",
		FileOutputs: []*livekit.EncodedFileOutput{{
			FileType: livekit.EncodedFileType_MP4,
			Filepath: outputKey,
			Output: &livekit.EncodedFileOutput_S3{
				S3: &livekit.S3Upload{
					Endpoint:  s.storage.Endpoint,
					Bucket:    s.storage.Bucket,
					Region:    s.storage.Region,
					AccessKey: s.storage.AccessKey,
					Secret:    s.storage.SecretKey,
				},
			},
		}},
	}
	info, err := s.client.StartRoomCompositeEgress(ctx, req)
	if err != nil {
		if isQuotaError(err) {
			return "", fmt.Errorf("capture: starting egress: %w", recording.ErrQuotaExhausted)
		}
		return "", fmt.Errorf("capture: starting egress: %w", err)
	}
	log.Printf("capture: started egress %s for room %s", info.EgressId, roomID)
	return info.EgressId, nil
}

// StopJob ends a running egress. Stopping an already ended egress is not an
// error worth surfacing to the session.
func (s *Service) StopJob(ctx context.Context, jobID string) error {
	if _, err := s.client.StopEgress(ctx, &livekit.StopEgressRequest{EgressId: jobID}); err != nil {
		return fmt.Errorf("capture: stopping egress %s: %w", jobID, err)
	}
	log.Printf("capture: stopped egress %s", jobID)
	return nil
}

// isQuotaError matches the provider's quota exhaustion responses. The API
// reports these as plain error strings, not typed errors.
func isQuotaError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "egress minutes exceeded") ||
		strings.Contains(msg, "resource_exhausted")
}
