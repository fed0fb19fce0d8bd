package cache_test

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tmoody1973/rhythm-lab-app-sub003/infrastructure/cache"
)

func TestShowCache_NilClientIsNoop(t *testing.T) {
	c := cache.NewShowCache(nil, time.Minute)
	ctx := context.Background()

	assert.NoError(t, c.Set(ctx, "deep-house-vol1", []byte(`{}`)))
	val, ok, err := c.Get(ctx, "deep-house-vol1")
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, val)
	assert.NoError(t, c.Invalidate(ctx, "deep-house-vol1"))
}

func TestNewCache_RequiresHost(t *testing.T) {
	client, err := cache.NewCache(context.Background(), "", "6379", "", "", 0)

	assert.Nil(t, client)
	assert.Error(t, err)
}

// respServer answers the handful of commands the show cache sends.
type respServer struct {
	mu       sync.Mutex
	data     map[string]string
	commands [][]string
}

func startRespServer(t *testing.T) (*respServer, string) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	srv := &respServer{data: map[string]string{}}
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go srv.serve(conn)
		}
	}()
	t.Cleanup(func() { _ = ln.Close() })
	return srv, ln.Addr().String()
}

func (s *respServer) serve(conn net.Conn) {
	defer conn.Close()
	r := bufio.NewReader(conn)
	for {
		args, err := readCommand(r)
		if err != nil {
			return
		}
		if _, err := io.WriteString(conn, s.reply(args)); err != nil {
			return
		}
	}
}

func (s *respServer) reply(args []string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commands = append(s.commands, args)
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
		return "+OK\r\n"
	case "DEL":
		if _, ok := s.data[args[1]]; ok {
			delete(s.data, args[1])
			return ":1\r\n"
		}
		return ":0\r\n"
	default:
		return "+OK\r\n"
	}
}

func (s *respServer) command(name string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.commands {
		if strings.EqualFold(c[0], name) {
			return c
		}
	}
	return nil
}

func readCommand(r *bufio.Reader) ([]string, error) {
	line, err := r.ReadString('\n')
	if err != nil {
		return nil, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, "*")))
	if err != nil {
		return nil, err
	}
	args := make([]string, 0, n)
	for i := 0; i < n; i++ {
		header, err := r.ReadString('\n')
		if err != nil {
			return nil, err
		}
		size, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(header, "$")))
		if err != nil {
			return nil, err
		}
		buf := make([]byte, size+2)
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, err
		}
		args = append(args, string(buf[:size]))
	}
	return args, nil
}

func TestShowCache_RoundTripAgainstServer(t *testing.T) {
	srv, addr := startRespServer(t)
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })
	c := cache.NewShowCache(client, 5*time.Minute)
	ctx := context.Background()

	val, ok, err := c.Get(ctx, "deep-house-vol1")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, val)

	require.NoError(t, c.Set(ctx, "deep-house-vol1", []byte(`{"id":42}`)))
	set := srv.command("SET")
	require.NotNil(t, set)
	assert.Equal(t, "rhythmlab:show:deep-house-vol1", set[1])
	assert.Equal(t, `{"id":42}`, set[2])
	assert.Equal(t, []string{"ex", "300"}, []string{strings.ToLower(set[3]), set[4]})

	val, ok, err = c.Get(ctx, "deep-house-vol1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte(`{"id":42}`), val)

	require.NoError(t, c.Invalidate(ctx, "deep-house-vol1"))
	assert.Equal(t, "rhythmlab:show:deep-house-vol1", srv.command("DEL")[1])
	_, ok, err = c.Get(ctx, "deep-house-vol1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestShowCache_ServerErrorIsReturned(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1, DialTimeout: 200 * time.Millisecond})
	t.Cleanup(func() { _ = client.Close() })
	c := cache.NewShowCache(client, time.Minute)

	_, ok, err := c.Get(context.Background(), "deep-house-vol1")

	assert.Error(t, err)
	assert.False(t, ok)
}
