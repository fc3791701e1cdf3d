// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package server

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/db47h/cedarsim/catalog"
	"github.com/db47h/cedarsim/host"
	"github.com/db47h/cedarsim/netlist"
	"github.com/db47h/cedarsim/store"
)

const sessionKey = "session"

type errorResponse struct {
	Error string `json:"error"`
}

func abort(c *gin.Context, code int, err error) {
	c.AbortWithStatusJSON(code, errorResponse{Error: err.Error()})
}

func (s *Server) lookup(c *gin.Context) {
	ss := s.session(c.Param("id"))
	if ss == nil {
		abort(c, http.StatusNotFound, errors.Errorf("no session %s", c.Param("id")))
		return
	}
	c.Set(sessionKey, ss)
	c.Next()
}

func current(c *gin.Context) *session {
	return c.MustGet(sessionKey).(*session)
}

func (s *Server) handleTypes(c *gin.Context) {
	c.JSON(http.StatusOK, catalog.Describe(s.cfg.Catalog))
}

func (s *Server) handleCreate(c *gin.Context) {
	id, err := s.NewSession()
	if err != nil {
		abort(c, http.StatusServiceUnavailable, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (s *Server) handleDelete(c *gin.Context) {
	s.DeleteSession(current(c).id)
	c.Status(http.StatusNoContent)
}

func (s *Server) handleExec(c *gin.Context) {
	var cmd host.Command
	if err := c.ShouldBindJSON(&cmd); err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}
	ss := current(c)
	if !ss.limit.Allow() {
		abort(c, http.StatusTooManyRequests, errors.New("command rate exceeded"))
		return
	}
	c.JSON(http.StatusOK, ss.host.Exec(c.Request.Context(), cmd))
}

func (s *Server) handleLoad(c *gin.Context) {
	d, err := netlist.Decode(c.Request.Body)
	if err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}
	ss := current(c)
	if err = netlist.Apply(ss.host.Circuit(), d); err != nil {
		abort(c, http.StatusUnprocessableEntity, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"gates": len(d.Gates), "wires": len(d.Wires)})
}

func (s *Server) handleNetlist(c *gin.Context) {
	d, err := netlist.Capture(current(c).host.Circuit())
	if err != nil {
		abort(c, http.StatusInternalServerError, err)
		return
	}
	var buf bytes.Buffer
	if err = netlist.Encode(&buf, d); err != nil {
		abort(c, http.StatusInternalServerError, err)
		return
	}
	c.Data(http.StatusOK, "application/yaml", buf.Bytes())
}

func (s *Server) handleRun(c *gin.Context) {
	current(c).run.Resume()
	c.Status(http.StatusNoContent)
}

func (s *Server) handlePause(c *gin.Context) {
	current(c).run.Pause()
	c.Status(http.StatusNoContent)
}

func (s *Server) requireStore(c *gin.Context) bool {
	if s.cfg.Store == nil {
		abort(c, http.StatusNotImplemented, errors.New("no snapshot store configured"))
		return false
	}
	return true
}

func (s *Server) handleListSnapshots(c *gin.Context) {
	if !s.requireStore(c) {
		return
	}
	names, err := s.cfg.Store.List()
	if err != nil {
		abort(c, http.StatusInternalServerError, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"snapshots": names})
}

func (s *Server) handleSave(c *gin.Context) {
	if !s.requireStore(c) {
		return
	}
	name := c.Param("name")
	d, err := netlist.Capture(current(c).host.Circuit())
	if err != nil {
		abort(c, http.StatusInternalServerError, err)
		return
	}
	d.Name = name
	if err = s.cfg.Store.Save(name, d); err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleRestore(c *gin.Context) {
	if !s.requireStore(c) {
		return
	}
	d, err := s.cfg.Store.Load(c.Param("name"))
	if errors.Cause(err) == store.ErrNotFound {
		abort(c, http.StatusNotFound, err)
		return
	}
	if err != nil {
		abort(c, http.StatusInternalServerError, err)
		return
	}
	if err = netlist.Apply(current(c).host.Circuit(), d); err != nil {
		abort(c, http.StatusUnprocessableEntity, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"gates": len(d.Gates), "wires": len(d.Wires)})
}
