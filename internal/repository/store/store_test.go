package store

import (
	"context"
	"errors"
	"testing"

	"github.com/redis/rueidis"
	"github.com/redis/rueidis/mock"
	"go.uber.org/mock/gomock"
)

// --- store.go tests ---

func TestPing_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.Result(mock.RedisString("PONG")))

	s := NewForTest(c)
	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPing_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := NewForTest(c)
	if err := s.Ping(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestNew_RequiresAddrs(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatal("expected error for empty addrs")
	}
}

func TestContainsIgnoreCase(t *testing.T) {
	tests := []struct {
		s, sub string
		want   bool
	}{
		{"Index Already Exists", "index already exists", true},
		{"hello world", "world", true},
		{"short", "longer than input", false},
		{"exact", "exact", true},
		{"notempty", "", true},
	}
	for _, tc := range tests {
		if got := containsIgnoreCase(tc.s, tc.sub); got != tc.want {
			t.Errorf("containsIgnoreCase(%q, %q) = %v, want %v", tc.s, tc.sub, got, tc.want)
		}
	}
}

// --- hash.go tests ---

func TestHSet_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "HSET" && cmd[1] == "conv:1"
		})).
		Return(mock.Result(mock.RedisInt64(1)))

	s := NewForTest(c)
	if err := s.HSet(context.Background(), "conv:1", map[string]string{"title": "t"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestHSet_ErrorCarriesOp(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "HSET"
		})).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := NewForTest(c)
	err := s.HSet(context.Background(), "conv:1", map[string]string{"title": "t"})

	var se *Error
	if !errors.As(err, &se) || se.Op != OpHSet {
		t.Fatalf("expected *Error with op %s, got %v", OpHSet, err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Error("underlying error lost")
	}
}

func TestHGetAll_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("HGETALL", "conv:1")).
		Return(mock.Result(mock.RedisMap(map[string]rueidis.RedisMessage{
			"title": mock.RedisString("raft"),
		})))

	s := NewForTest(c)
	m, err := s.HGetAll(context.Background(), "conv:1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m["title"] != "raft" {
		t.Errorf("unexpected map %v", m)
	}
}

func TestRPushLRange(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("RPUSH", "conv:1:messages", "a", "b")).
		Return(mock.Result(mock.RedisInt64(2)))
	c.EXPECT().
		Do(gomock.Any(), mock.Match("LRANGE", "conv:1:messages", "0", "-1")).
		Return(mock.Result(mock.RedisArray(mock.RedisString("a"), mock.RedisString("b"))))

	s := NewForTest(c)
	if err := s.RPush(context.Background(), "conv:1:messages", "a", "b"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	vals, err := s.LRange(context.Background(), "conv:1:messages", 0, -1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vals) != 2 || vals[0] != "a" || vals[1] != "b" {
		t.Errorf("unexpected values %v", vals)
	}
}

func TestRPush_ErrorCarriesOp(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "RPUSH"
		})).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := NewForTest(c)
	err := s.RPush(context.Background(), "conv:1:messages", "a")

	var se *Error
	if !errors.As(err, &se) || se.Op != OpRPush {
		t.Fatalf("expected *Error with op %s, got %v", OpRPush, err)
	}
}

func TestLRange_ErrorCarriesOp(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "LRANGE"
		})).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := NewForTest(c)
	_, err := s.LRange(context.Background(), "conv:1:messages", 0, -1)

	var se *Error
	if !errors.As(err, &se) || se.Op != OpLRange {
		t.Fatalf("expected *Error with op %s, got %v", OpLRange, err)
	}
}

func TestScan_Paginates(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "SCAN" && cmd[1] == "0"
		})).
		Return(mock.Result(mock.RedisArray(
			mock.RedisString("42"),
			mock.RedisArray(mock.RedisString("conv:1")),
		)))
	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "SCAN" && cmd[1] == "42"
		})).
		Return(mock.Result(mock.RedisArray(
			mock.RedisString("0"),
			mock.RedisArray(mock.RedisString("conv:2")),
		)))

	s := NewForTest(c)
	keys, err := s.Scan(context.Background(), "conv:*")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(keys) != 2 || keys[0] != "conv:1" || keys[1] != "conv:2" {
		t.Errorf("unexpected keys %v", keys)
	}
}

// --- search.go tests ---

func TestEnsureIndex_AlreadyExistsIsNotAnError(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.CREATE" && cmd[1] == "idx:docs"
		})).
		Return(mock.Result(mock.RedisError("Index already exists")))

	s := NewForTest(c)
	if err := s.EnsureIndex(context.Background(), "idx:docs", "doc:", 4); err != nil {
		t.Fatalf("existing index must be tolerated, got %v", err)
	}
}

func TestEnsureIndex_OtherServerError(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.CREATE"
		})).
		Return(mock.Result(mock.RedisError("wrong number of arguments")))

	s := NewForTest(c)
	err := s.EnsureIndex(context.Background(), "idx:docs", "doc:", 4)

	var se *Error
	if !errors.As(err, &se) || se.Op != OpCreateIndex {
		t.Fatalf("expected *Error with op %s, got %v", OpCreateIndex, err)
	}
}

func TestEnsureIndex_Validation(t *testing.T) {
	ctrl := gomock.NewController(t)
	s := NewForTest(mock.NewClient(ctrl))

	if err := s.EnsureIndex(context.Background(), "", "doc:", 4); err == nil {
		t.Error("expected error for empty name")
	}
	if err := s.EnsureIndex(context.Background(), "idx", "doc:", 0); err == nil {
		t.Error("expected error for zero dimension")
	}
}

func TestSearchKNN_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.SEARCH" && cmd[1] == "idx:docs"
		})).
		Return(mock.Result(mock.RedisArray(
			mock.RedisInt64(1), // total
			mock.RedisString("doc:1"),
			mock.RedisArray(
				mock.RedisString("__vector_score"),
				mock.RedisString("0.1"), // distance 0.1 → similarity 0.9
				mock.RedisString("title"),
				mock.RedisString("Raft"),
				mock.RedisString("content"),
				mock.RedisString("Raft is a consensus protocol."),
			),
		)))

	s := NewForTest(c)
	entries, err := s.SearchKNN(context.Background(), "idx:docs", []float32{0.1, 0.2}, 10,
		[]string{"title", "content", "__vector_score"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Key != "doc:1" {
		t.Errorf("expected key doc:1, got %s", entries[0].Key)
	}
	// cosine distance 0.1 maps to similarity 0.9
	if entries[0].Score < 0.89 || entries[0].Score > 0.91 {
		t.Errorf("expected score ~0.9, got %f", entries[0].Score)
	}
	if entries[0].Fields["title"] != "Raft" {
		t.Errorf("unexpected fields %v", entries[0].Fields)
	}
	if _, leaked := entries[0].Fields["__vector_score"]; leaked {
		t.Error("raw score field must not leak into fields")
	}
}

func TestSearchKNN_Empty(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.SEARCH"
		})).
		Return(mock.Result(mock.RedisArray(mock.RedisInt64(0))))

	s := NewForTest(c)
	entries, err := s.SearchKNN(context.Background(), "idx:docs", []float32{0.1}, 10, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected 0 entries, got %d", len(entries))
	}
}

func TestSearchKNN_Validation(t *testing.T) {
	ctrl := gomock.NewController(t)
	s := NewForTest(mock.NewClient(ctrl))

	if _, err := s.SearchKNN(context.Background(), "", []float32{0.1}, 10, nil); err == nil {
		t.Error("expected error for empty index")
	}
	if _, err := s.SearchKNN(context.Background(), "idx", nil, 10, nil); err == nil {
		t.Error("expected error for empty vector")
	}
	if _, err := s.SearchKNN(context.Background(), "idx", []float32{0.1}, 0, nil); err == nil {
		t.Error("expected error for non-positive k")
	}
}

func TestVectorToBytes(t *testing.T) {
	b := vectorToBytes([]float32{1.0})
	if len(b) != 4 {
		t.Fatalf("expected 4 bytes, got %d", len(b))
	}
	// 1.0 as little-endian float32 is 00 00 80 3f
	if b[0] != 0x00 || b[1] != 0x00 || b[2] != 0x80 || b[3] != 0x3f {
		t.Errorf("unexpected encoding % x", []byte(b))
	}
}
