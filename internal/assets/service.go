package assets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/assetd/internal/events"
	"github.com/fyrsmithlabs/assetd/internal/manifest"
	"github.com/fyrsmithlabs/assetd/internal/sanitize"
	"github.com/fyrsmithlabs/assetd/internal/scope"
	"github.com/fyrsmithlabs/assetd/internal/store"
)

const instrumentationName = "github.com/fyrsmithlabs/assetd/internal/assets"

// ServiceConfig holds registry configuration.
type ServiceConfig struct {
	// MaxPayloadBytes caps accepted payload sizes. Zero disables the cap.
	MaxPayloadBytes int64
}

// DefaultServiceConfig returns the default registry configuration.
func DefaultServiceConfig() *ServiceConfig {
	return &ServiceConfig{
		MaxPayloadBytes: 64 << 20, // 64 MiB
	}
}

// Service provides asset version registration and retrieval.
type Service interface {
	// RegisterData registers a new version of a data asset.
	RegisterData(ctx context.Context, req *RegisterRequest) (*Version, error)

	// RegisterModel registers a new version of a model asset.
	RegisterModel(ctx context.Context, req *RegisterRequest) (*Version, error)

	// GetData retrieves a data asset version and its payload.
	GetData(ctx context.Context, req *GetRequest) (*Version, []byte, error)

	// GetModel retrieves a model asset version and its payload.
	GetModel(ctx context.Context, req *GetRequest) (*Version, []byte, error)

	// ListVersions returns an asset's versions in registration order.
	ListVersions(ctx context.Context, req *ListRequest) ([]*Version, error)

	// Close releases service resources.
	Close() error
}

type service struct {
	config    *ServiceConfig
	objects   store.Store
	catalog   *manifest.Catalog // optional, nil skips manifest checks
	publisher *events.Publisher
	logger    *zap.Logger

	tracer trace.Tracer
	meter  metric.Meter

	registerCounter metric.Int64Counter
	retrieveCounter metric.Int64Counter

	// regMu serializes registrations so sequence numbers stay dense
	// within each asset branch.
	regMu sync.Mutex

	mu     sync.RWMutex
	closed bool
}

// NewService creates an asset registry backed by the given object store.
// The catalog and publisher are optional: without a catalog any
// storage-safe asset ID is accepted, without a publisher events are
// dropped.
func NewService(config *ServiceConfig, objects store.Store, catalog *manifest.Catalog, publisher *events.Publisher, logger *zap.Logger) (Service, error) {
	if config == nil {
		config = DefaultServiceConfig()
	}
	if objects == nil {
		return nil, errors.New("object store is required")
	}
	if publisher == nil {
		publisher = events.NewPublisher(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &service{
		config:    config,
		objects:   objects,
		catalog:   catalog,
		publisher: publisher,
		logger:    logger,
		tracer:    otel.Tracer(instrumentationName),
		meter:     otel.Meter(instrumentationName),
	}
	s.initMetrics()

	return s, nil
}

func (s *service) initMetrics() {
	var err error

	s.registerCounter, err = s.meter.Int64Counter(
		"assetd.assets.registered_total",
		metric.WithDescription("Total asset versions registered"),
		metric.WithUnit("{version}"),
	)
	if err != nil {
		s.logger.Warn("failed to create register counter", zap.Error(err))
	}

	s.retrieveCounter, err = s.meter.Int64Counter(
		"assetd.assets.retrieved_total",
		metric.WithDescription("Total asset versions retrieved"),
		metric.WithUnit("{version}"),
	)
	if err != nil {
		s.logger.Warn("failed to create retrieve counter", zap.Error(err))
	}
}

func (s *service) isClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

// RegisterData registers a new version of a data asset.
func (s *service) RegisterData(ctx context.Context, req *RegisterRequest) (*Version, error) {
	return s.register(ctx, manifest.KindData, req)
}

// RegisterModel registers a new version of a model asset.
func (s *service) RegisterModel(ctx context.Context, req *RegisterRequest) (*Version, error) {
	return s.register(ctx, manifest.KindModel, req)
}

func (s *service) register(ctx context.Context, kind manifest.Kind, req *RegisterRequest) (*Version, error) {
	ctx, span := s.tracer.Start(ctx, "assets.register")
	defer span.End()

	if s.isClosed() {
		return nil, errors.New("service is closed")
	}
	if req == nil {
		return nil, errors.New("register request is required")
	}

	span.SetAttributes(
		attribute.String("asset.kind", string(kind)),
		attribute.String("asset.id", req.AssetID),
		attribute.String("asset.project", req.Project),
	)

	if !sanitize.Valid(req.Project) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidProject, req.Project)
	}
	if !sanitize.Valid(req.AssetID) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAssetID, req.AssetID)
	}
	if s.config.MaxPayloadBytes > 0 && int64(len(req.Payload)) > s.config.MaxPayloadBytes {
		return nil, fmt.Errorf("%w: %d bytes (limit %d)", ErrPayloadTooLarge, len(req.Payload), s.config.MaxPayloadBytes)
	}

	branch, err := sanitize.BranchName(req.WriteBranch)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("invalid write branch: %w", err)
	}
	span.SetAttributes(attribute.String("asset.branch", branch))

	annotations, err := s.mergeAnnotations(kind, req.AssetID, req.Annotations)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	version := &Version{
		ID:          uuid.New().String(),
		AssetID:     req.AssetID,
		Kind:        kind,
		Project:     req.Project,
		Branch:      branch,
		RunID:       req.RunID,
		Pathspec:    req.Pathspec,
		Annotations: annotations,
		CreatedAt:   time.Now().UTC(),
	}

	s.regMu.Lock()
	defer s.regMu.Unlock()

	existing, err := s.objects.List(ctx, versionsPrefix(version.Project, version.Branch, kind, version.AssetID))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to list existing versions: %w", err)
	}
	version.Sequence = len(existing) + 1

	record, err := json.Marshal(version)
	if err != nil {
		return nil, fmt.Errorf("failed to encode version record: %w", err)
	}

	if err := s.objects.Put(ctx, payloadKey(version.Project, version.Branch, kind, version.AssetID, version.ID), req.Payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to store payload: %w", err)
	}
	if err := s.objects.Put(ctx, versionKey(version.Project, version.Branch, kind, version.AssetID, version.ID), record); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to store version record: %w", err)
	}
	if err := s.objects.Put(ctx, latestKey(version.Project, version.Branch, kind, version.AssetID), record); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to update latest marker: %w", err)
	}

	if s.registerCounter != nil {
		s.registerCounter.Add(ctx, 1, metric.WithAttributes(
			attribute.String("kind", string(kind)),
			attribute.String("project", version.Project),
		))
	}

	s.publishEvent(events.EventRegistered, version)

	s.logger.Info("registered asset version",
		zap.String("project", version.Project),
		zap.String("branch", version.Branch),
		zap.String("kind", string(kind)),
		zap.String("asset_id", version.AssetID),
		zap.String("version_id", version.ID),
		zap.Int("sequence", version.Sequence))

	return version, nil
}

// GetData retrieves a data asset version and its payload.
func (s *service) GetData(ctx context.Context, req *GetRequest) (*Version, []byte, error) {
	return s.get(ctx, manifest.KindData, req)
}

// GetModel retrieves a model asset version and its payload.
func (s *service) GetModel(ctx context.Context, req *GetRequest) (*Version, []byte, error) {
	return s.get(ctx, manifest.KindModel, req)
}

func (s *service) get(ctx context.Context, kind manifest.Kind, req *GetRequest) (*Version, []byte, error) {
	ctx, span := s.tracer.Start(ctx, "assets.get")
	defer span.End()

	if s.isClosed() {
		return nil, nil, errors.New("service is closed")
	}
	if req == nil {
		return nil, nil, errors.New("get request is required")
	}

	span.SetAttributes(
		attribute.String("asset.kind", string(kind)),
		attribute.String("asset.id", req.AssetID),
		attribute.String("asset.project", req.Project),
	)

	resolved, err := scope.Resolve(scope.ProjectConfig{
		Project:         req.Project,
		DevAssetsBranch: req.DevAssetsBranch,
	}, req.Deployment)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, nil, err
	}

	if !sanitize.Valid(req.Project) {
		return nil, nil, fmt.Errorf("%w: %q", ErrInvalidProject, req.Project)
	}
	if !sanitize.Valid(req.AssetID) {
		return nil, nil, fmt.Errorf("%w: %q", ErrInvalidAssetID, req.AssetID)
	}

	rawBranch := resolved.ReadBranch
	if rawBranch == "" {
		rawBranch = req.WriteBranch
	}
	branch, err := sanitize.BranchName(rawBranch)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, nil, fmt.Errorf("no readable branch: %w", err)
	}
	span.SetAttributes(
		attribute.String("asset.branch", branch),
		attribute.String("scope.class", string(resolved.Class)),
	)

	version, err := s.loadVersion(ctx, kind, req, branch)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, nil, err
	}

	payload, err := s.objects.Get(ctx, payloadKey(req.Project, branch, kind, req.AssetID, version.ID))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil, fmt.Errorf("%w: payload for version %s", ErrVersionNotFound, version.ID)
		}
		return nil, nil, fmt.Errorf("failed to load payload: %w", err)
	}

	if s.retrieveCounter != nil {
		s.retrieveCounter.Add(ctx, 1, metric.WithAttributes(
			attribute.String("kind", string(kind)),
			attribute.String("project", req.Project),
		))
	}

	s.publishEvent(events.EventRetrieved, version)

	s.logger.Info("retrieved asset version",
		zap.String("project", req.Project),
		zap.String("branch", branch),
		zap.String("kind", string(kind)),
		zap.String("asset_id", req.AssetID),
		zap.String("version_id", version.ID),
		zap.String("scope_class", string(resolved.Class)))

	return version, payload, nil
}

// loadVersion reads the version record selected by the request. An empty
// selector or LatestVersion reads the latest marker.
func (s *service) loadVersion(ctx context.Context, kind manifest.Kind, req *GetRequest, branch string) (*Version, error) {
	key := latestKey(req.Project, branch, kind, req.AssetID)
	byID := req.Version != "" && req.Version != LatestVersion
	if byID {
		key = versionKey(req.Project, branch, kind, req.AssetID, req.Version)
	}

	raw, err := s.objects.Get(ctx, key)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			if byID {
				return nil, fmt.Errorf("%w: %s", ErrVersionNotFound, req.Version)
			}
			return nil, fmt.Errorf("%w: %s/%s on branch %s", ErrAssetNotFound, kind.Dir(), req.AssetID, branch)
		}
		return nil, fmt.Errorf("failed to load version record: %w", err)
	}

	var version Version
	if err := json.Unmarshal(raw, &version); err != nil {
		return nil, fmt.Errorf("failed to decode version record: %w", err)
	}
	return &version, nil
}

// ListVersions returns an asset's versions in registration order.
func (s *service) ListVersions(ctx context.Context, req *ListRequest) ([]*Version, error) {
	ctx, span := s.tracer.Start(ctx, "assets.list_versions")
	defer span.End()

	if s.isClosed() {
		return nil, errors.New("service is closed")
	}
	if req == nil {
		return nil, errors.New("list request is required")
	}
	if req.Kind != manifest.KindData && req.Kind != manifest.KindModel {
		return nil, fmt.Errorf("%w: %q", manifest.ErrInvalidKind, req.Kind)
	}

	span.SetAttributes(
		attribute.String("asset.kind", string(req.Kind)),
		attribute.String("asset.id", req.AssetID),
		attribute.String("asset.project", req.Project),
	)

	if !sanitize.Valid(req.Project) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidProject, req.Project)
	}
	if !sanitize.Valid(req.AssetID) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAssetID, req.AssetID)
	}
	branch, err := sanitize.BranchName(req.Branch)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("invalid branch: %w", err)
	}

	keys, err := s.objects.List(ctx, versionsPrefix(req.Project, branch, req.Kind, req.AssetID))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to list versions: %w", err)
	}

	versions := make([]*Version, 0, len(keys))
	for _, key := range keys {
		raw, err := s.objects.Get(ctx, key)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("failed to load version record %s: %w", key, err)
		}
		var version Version
		if err := json.Unmarshal(raw, &version); err != nil {
			return nil, fmt.Errorf("failed to decode version record %s: %w", key, err)
		}
		versions = append(versions, &version)
	}

	sort.Slice(versions, func(i, j int) bool {
		if versions[i].Sequence != versions[j].Sequence {
			return versions[i].Sequence < versions[j].Sequence
		}
		return versions[i].CreatedAt.Before(versions[j].CreatedAt)
	})

	return versions, nil
}

// Close marks the service closed. Subsequent calls are no-ops. The
// underlying object store stays open, its owner closes it.
func (s *service) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	s.logger.Info("asset service closed")
	return nil
}

// mergeAnnotations combines the catalog's static annotations with the
// request's dynamic ones. Dynamic values win on key collisions.
func (s *service) mergeAnnotations(kind manifest.Kind, assetID string, dynamic map[string]string) (map[string]string, error) {
	merged := make(map[string]string)

	if s.catalog != nil {
		if _, err := s.catalog.Get(kind, assetID); err != nil {
			return nil, fmt.Errorf("%w: %s/%s", ErrUnknownAsset, kind.Dir(), assetID)
		}
		for k, v := range s.catalog.StaticAnnotations(kind, assetID) {
			merged[k] = v
		}
	}
	for k, v := range dynamic {
		merged[k] = v
	}

	if len(merged) == 0 {
		return nil, nil
	}
	return merged, nil
}

// publishEvent emits a lifecycle event. Publish failures are logged,
// never returned: eventing is best effort.
func (s *service) publishEvent(eventType string, v *Version) {
	if !s.publisher.Enabled() {
		return
	}

	event := events.Event{
		Kind:      string(v.Kind),
		AssetID:   v.AssetID,
		Project:   v.Project,
		Branch:    v.Branch,
		VersionID: v.ID,
		RunID:     v.RunID,
		Pathspec:  v.Pathspec,
	}

	var err error
	switch eventType {
	case events.EventRegistered:
		err = s.publisher.Registered(event)
	case events.EventRetrieved:
		err = s.publisher.Retrieved(event)
	}
	if err != nil {
		s.logger.Warn("failed to publish asset event",
			zap.String("event", eventType),
			zap.String("asset_id", v.AssetID),
			zap.Error(err))
	}
}
