package router

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/booking-ledger/internal/config"
	"github.com/iliyamo/booking-ledger/internal/middleware"
)

// kvServer speaks enough RESP2 for the response cache: GET, SET, SETEX.
// HELLO is refused so clients fall back to RESP2.
type kvServer struct {
	mu   sync.Mutex
	data map[string]string
	sets int
}

func startKV(t *testing.T) (*kvServer, string) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	s := &kvServer{data: map[string]string{}}
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go s.serve(conn)
		}
	}()
	return s, ln.Addr().String()
}

func (s *kvServer) serve(conn net.Conn) {
	defer conn.Close()
	r := bufio.NewReader(conn)
	for {
		args, err := readCommand(r)
		if err != nil {
			return
		}
		if _, err := io.WriteString(conn, s.exec(args)); err != nil {
			return
		}
	}
}

func (s *kvServer) exec(args []string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch strings.ToUpper(args[0]) {
	case "HELLO":
		return "-ERR unknown command 'HELLO'\r\n"
	case "PING":
		return "+PONG\r\n"
	case "GET":
		v, ok := s.data[args[1]]
		if !ok {
			return "$-1\r\n"
		}
		return fmt.Sprintf("$%d\r\n%s\r\n", len(v), v)
	case "SET":
		s.data[args[1]] = args[2]
		s.sets++
	case "SETEX":
		s.data[args[1]] = args[3]
		s.sets++
	}
	return "+OK\r\n"
}

func (s *kvServer) stored() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sets
}

func readCommand(r *bufio.Reader) ([]string, error) {
	line, err := r.ReadString('\n')
	if err != nil {
		return nil, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, "*")))
	if err != nil || n < 1 {
		return nil, fmt.Errorf("bad array header %q", line)
	}
	args := make([]string, n)
	for i := range args {
		head, err := r.ReadString('\n')
		if err != nil {
			return nil, err
		}
		size, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(head, "$")))
		if err != nil {
			return nil, fmt.Errorf("bad bulk header %q", head)
		}
		buf := make([]byte, size+2)
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, err
		}
		args[i] = string(buf[:size])
	}
	return args, nil
}

func newCachedAPI(t *testing.T, strategy string) (*api, *kvServer) {
	t.Helper()
	kv, addr := startKV(t)
	rdb := redis.NewClient(&redis.Options{Addr: addr, Protocol: 2, DisableIdentity: true})
	t.Cleanup(func() { rdb.Close() })

	cache := middleware.NewRedisCache(config.CacheConfig{
		Enabled:      true,
		Methods:      map[string]bool{http.MethodGet: true},
		TTL:          time.Minute,
		KeyStrategy:  strategy,
		Prefix:       "test:cache",
		MaxBodyBytes: 1 << 20,
	}, rdb)
	return newGuardedAPI(t, Guards{JWTSecret: secret, Cache: cache}), kv
}

func TestAvailabilityIsNeverServedFromCache(t *testing.T) {
	for _, strategy := range []string{"route_query", "route"} {
		t.Run(strategy, func(t *testing.T) {
			a, kv := newCachedAPI(t, strategy)
			const avail = "/v1/resources/villa/availability?start=1704067200&end=1704153600"

			code, _ := a.do(http.MethodPost, "/v1/listings", "olga", `{"id":"villa","data_hash":"bafy"}`)
			require.Equal(t, http.StatusCreated, code)

			_, body := a.do(http.MethodGet, avail, "", "")
			assert.Equal(t, true, body["available"])

			code, _ = a.do(http.MethodPost, "/v1/bookings", "alice",
				`{"resource_id":"villa","start":1704067200,"end":1704153600,"total_price":"10"}`)
			require.Equal(t, http.StatusCreated, code)

			_, body = a.do(http.MethodGet, avail, "", "")
			assert.Equal(t, false, body["available"], "booking must be visible at once")

			code, _ = a.do(http.MethodPost, "/v1/bookings/0/cancel", "alice", "")
			require.Equal(t, http.StatusOK, code)

			_, body = a.do(http.MethodGet, avail, "", "")
			assert.Equal(t, true, body["available"], "cancellation must be visible at once")
			assert.Zero(t, kv.stored())
		})
	}
}

func TestListingReadsAreCached(t *testing.T) {
	a, kv := newCachedAPI(t, "route")

	for _, id := range []string{"villa", "cabin"} {
		code, _ := a.do(http.MethodPost, "/v1/listings", "olga", `{"id":"`+id+`","data_hash":"h-`+id+`"}`)
		require.Equal(t, http.StatusCreated, code)
	}

	_, villa := a.do(http.MethodGet, "/v1/listings/villa", "", "")
	_, cabin := a.do(http.MethodGet, "/v1/listings/cabin", "", "")
	assert.Equal(t, "villa", villa["id"])
	assert.Equal(t, "cabin", cabin["id"], "distinct listings get distinct entries")
	assert.Equal(t, 2, kv.stored())

	_, again := a.do(http.MethodGet, "/v1/listings/villa", "", "")
	assert.Equal(t, villa, again)
	assert.Equal(t, 2, kv.stored(), "second read is a hit")
}
