package redis

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"testing"

	"github.com/redis/go-redis/v9"

	"cv-builder/internal/shared/storage/kv"
)

// fakeServer answers GET/SET/DEL/PING from a map without dialing.
type fakeServer struct {
	mu   sync.Mutex
	data map[string]string
	fail error
}

func (f *fakeServer) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		return nil, errors.New("dial disabled in tests")
	}
}

func (f *fakeServer) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.fail != nil {
			cmd.SetErr(f.fail)
			return f.fail
		}
		args := cmd.Args()
		switch c := cmd.(type) {
		case *redis.StringCmd:
			v, ok := f.data[fmt.Sprint(args[1])]
			if !ok {
				c.SetErr(redis.Nil)
				return redis.Nil
			}
			c.SetVal(v)
		case *redis.StatusCmd:
			if cmd.Name() == "set" {
				f.data[fmt.Sprint(args[1])] = toString(args[2])
			}
			c.SetVal("OK")
		case *redis.IntCmd:
			var n int64
			for _, k := range args[1:] {
				key := fmt.Sprint(k)
				if _, ok := f.data[key]; ok {
					delete(f.data, key)
					n++
				}
			}
			c.SetVal(n)
		}
		return nil
	}
}

func (f *fakeServer) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return next
}

func toString(v any) string {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return fmt.Sprint(v)
}

func newTestStore() (*Store, *fakeServer) {
	fake := &fakeServer{data: map[string]string{}}
	client := redis.NewClient(&redis.Options{Addr: "fake:6379"})
	client.AddHook(fake)
	return New(client, "cvb:"), fake
}

func TestReadWriteDelete(t *testing.T) {
	ctx := context.Background()
	store, fake := newTestStore()

	if _, err := store.Read(ctx, "u/saved_cvs"); !errors.Is(err, kv.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := store.Write(ctx, "u/saved_cvs", []byte(`[]`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, ok := fake.data["cvb:u/saved_cvs"]; !ok {
		t.Fatalf("expected prefixed key, got %v", fake.data)
	}
	got, err := store.Read(ctx, "u/saved_cvs")
	if err != nil || string(got) != `[]` {
		t.Fatalf("read: %q %v", got, err)
	}
	if err := store.Delete(ctx, "u/saved_cvs"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Read(ctx, "u/saved_cvs"); !errors.Is(err, kv.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestErrorsAreWrapped(t *testing.T) {
	ctx := context.Background()
	store, fake := newTestStore()
	fake.fail = errors.New("connection reset")

	if _, err := store.Read(ctx, "k"); err == nil || errors.Is(err, kv.ErrNotFound) {
		t.Fatalf("expected transport error, got %v", err)
	}
	if err := store.Write(ctx, "k", []byte("v")); err == nil {
		t.Fatalf("expected write error")
	}
	if err := store.Health(ctx); err == nil {
		t.Fatalf("expected health error")
	}
}

func TestConnectRejectsBadURL(t *testing.T) {
	if _, err := Connect(context.Background(), "not a url", Options{}); err == nil {
		t.Fatalf("expected parse error")
	}
}
