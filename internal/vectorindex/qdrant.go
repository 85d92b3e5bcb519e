// Package vectorindex maintains an optional Qdrant index of layer entries
// for semantic candidate pre-selection. The keyword retrieval path needs
// no index; this is the accelerated upgrade.
package vectorindex

import (
	"context"
	"fmt"

	"github.com/nidhogg/teamlens/internal/layer"
	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Config holds connection settings for a Qdrant instance.
type Config struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// Index wraps gRPC connections to Qdrant's collections and points services
// and indexes context entries per layer collection.
type Index struct {
	conn        *grpc.ClientConn
	collections pb.CollectionsClient
	points      pb.PointsClient
}

// New dials the Qdrant gRPC endpoint and returns a ready Index.
func New(cfg Config) (*Index, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("qdrant connect %s: %w", addr, err)
	}
	return &Index{
		conn:        conn,
		collections: pb.NewCollectionsClient(conn),
		points:      pb.NewPointsClient(conn),
	}, nil
}

// collectionFor names the per-layer collection.
func collectionFor(t layer.Type) string {
	return "teamlens_" + string(t)
}

// EnsureCollections creates missing per-layer collections.
func (x *Index) EnsureCollections(ctx context.Context, dimension uint64) error {
	for _, t := range layer.Types() {
		name := collectionFor(t)
		_, err := x.collections.Get(ctx, &pb.GetCollectionInfoRequest{CollectionName: name})
		if err == nil {
			continue
		}
		_, err = x.collections.Create(ctx, &pb.CreateCollection{
			CollectionName: name,
			VectorsConfig: &pb.VectorsConfig{
				Config: &pb.VectorsConfig_Params{
					Params: &pb.VectorParams{
						Size:     dimension,
						Distance: pb.Distance_Cosine,
					},
				},
			},
		})
		if err != nil {
			return fmt.Errorf("create collection %s: %w", name, err)
		}
	}
	return nil
}

// IndexEntry upserts one entry's vector into its layer collection.
func (x *Index) IndexEntry(ctx context.Context, e layer.Entry, vector []float32) error {
	_, err := x.points.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: collectionFor(e.Layer),
		Points: []*pb.PointStruct{
			{
				Id:      &pb.PointId{PointIdOptions: &pb.PointId_Uuid{Uuid: e.ID}},
				Vectors: &pb.Vectors{VectorsOptions: &pb.Vectors_Vector{Vector: &pb.Vector{Data: vector}}},
				Payload: map[string]*pb.Value{
					"layer":    {Kind: &pb.Value_StringValue{StringValue: string(e.Layer)}},
					"priority": {Kind: &pb.Value_StringValue{StringValue: e.Priority.String()}},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("index entry %s: %w", e.ID, err)
	}
	return nil
}

// Candidate is one semantic search hit.
type Candidate struct {
	ID    string
	Score float32
}

// Search returns the top-K nearest entries in the layer's collection.
func (x *Index) Search(ctx context.Context, t layer.Type, vector []float32, topK uint64) ([]Candidate, error) {
	name := collectionFor(t)
	resp, err := x.points.Search(ctx, &pb.SearchPoints{
		CollectionName: name,
		Vector:         vector,
		Limit:          topK,
	})
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", name, err)
	}
	out := make([]Candidate, 0, len(resp.Result))
	for _, r := range resp.Result {
		out = append(out, Candidate{ID: r.Id.GetUuid(), Score: r.Score})
	}
	return out, nil
}

// Close tears down the underlying gRPC connection.
func (x *Index) Close() error {
	return x.conn.Close()
}
