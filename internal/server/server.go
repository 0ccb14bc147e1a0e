// Package server implements the line-delimited TCP protocol: accept a
// connection, read a "\n\n"-terminated request, execute it, write back a
// "\n\n"-terminated response (spec §6 "Wire protocol").
package server

import (
	"bufio"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/freeeve/minidb/internal/executor"
	"github.com/freeeve/minidb/internal/logging"
)

var log = logging.For("Server")

// Server accepts connections on one listener and spawns one goroutine per
// connection, mirroring the original's "detached worker thread per client
// connection" model (spec §5) with Go's native concurrency primitive.
type Server struct {
	Executor *executor.Executor
	listener net.Listener
	nextID   atomic.Uint64
}

// New returns a Server backed by exec, bound to no listener yet.
func New(exec *executor.Executor) *Server {
	return &Server{Executor: exec}
}

// ListenAndServe binds addr and serves connections until the listener is
// closed (e.g. by Shutdown, or process signal handling in cmd/minidbserver).
func (s *Server) ListenAndServe(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.listener = ln
	log.Info("listening", "addr", addr)

	for {
		conn, err := ln.Accept()
		if err != nil {
			if strings.Contains(err.Error(), "use of closed network connection") {
				return nil
			}
			return fmt.Errorf("accept failed: %w", err)
		}
		go s.handleConn(conn)
	}
}

// Shutdown closes the listener, causing ListenAndServe to return.
func (s *Server) Shutdown() error {
	if s.listener == nil {
		return nil
	}
	return s.listener.Close()
}

func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()
	id := s.nextID.Add(1)
	queryID := "q" + strconv.FormatUint(id, 10)
	reader := bufio.NewReader(conn)

	for {
		sql, err := readRequest(reader)
		if err != nil {
			return
		}
		sql = strings.TrimSpace(sql)
		if sql == "" {
			continue
		}

		result, err := s.Executor.Run(queryID, sql)
		var response string
		if err != nil {
			log.Warn("query failed", "query_id", queryID, "error", err)
			response = "ERROR: " + err.Error()
		} else {
			response = result
		}
		if _, err := conn.Write([]byte(response + "\n\n")); err != nil {
			return
		}
	}
}

// readRequest reads bytes up to and including the first "\n\n" delimiter,
// returning the request text with the delimiter stripped.
func readRequest(r *bufio.Reader) (string, error) {
	var b strings.Builder
	for {
		line, err := r.ReadString('\n')
		b.WriteString(line)
		if err != nil {
			return "", err
		}
		if strings.HasSuffix(b.String(), "\n\n") {
			return strings.TrimSuffix(b.String(), "\n\n"), nil
		}
	}
}
