package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/davicafu/memberquery/internal/member/application"
	"github.com/davicafu/memberquery/internal/member/domain"
	sharedDomain "github.com/davicafu/memberquery/internal/shared/domain"
	sharedQuery "github.com/davicafu/memberquery/internal/shared/platform/query"
	"github.com/davicafu/memberquery/pkg/utils"
)

// MemberHandler encapsula los endpoints HTTP de búsqueda de miembros.
type MemberHandler struct {
	service         *application.MemberQueryService
	defaultPageSize int
	maxPageSize     int
}

func NewMemberHandler(service *application.MemberQueryService, defaultPageSize, maxPageSize int) *MemberHandler {
	return &MemberHandler{
		service:         service,
		defaultPageSize: defaultPageSize,
		maxPageSize:     maxPageSize,
	}
}

// ---------------- Handlers ----------------

// SearchMembers endpoint GET /v1/members
func (h *MemberHandler) SearchMembers(c *gin.Context) {
	cond, sorts, err := parseSearch(c)
	if err != nil {
		utils.SendClassifiedError(c, err)
		return
	}

	rows, err := h.service.Search(c.Request.Context(), cond, sorts...)
	if err != nil {
		utils.SendClassifiedError(c, err)
		return
	}
	utils.SendSuccess(c, http.StatusOK, rows)
}

// SearchMembersPage endpoint GET /v2/members
func (h *MemberHandler) SearchMembersPage(c *gin.Context) {
	cond, sorts, err := parseSearch(c)
	if err != nil {
		utils.SendClassifiedError(c, err)
		return
	}
	p, err := h.parsePagination(c)
	if err != nil {
		utils.SendClassifiedError(c, err)
		return
	}

	page, err := h.service.SearchPage(c.Request.Context(), cond, p, sorts...)
	if err != nil {
		utils.SendClassifiedError(c, err)
		return
	}
	utils.SendSuccess(c, http.StatusOK, pageResponse(page))
}

// ListMembers endpoint GET /members
func (h *MemberHandler) ListMembers(c *gin.Context) {
	p, err := h.parsePagination(c)
	if err != nil {
		utils.SendClassifiedError(c, err)
		return
	}

	page, err := h.service.FindAll(c.Request.Context(), p)
	if err != nil {
		utils.SendClassifiedError(c, err)
		return
	}
	utils.SendSuccess(c, http.StatusOK, pageResponse(page))
}

// GetByUsername endpoint GET /members/by-username/:username
func (h *MemberHandler) GetByUsername(c *gin.Context) {
	m, err := h.service.FindByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		utils.SendClassifiedError(c, err, domain.ErrMemberNotFound)
		return
	}
	utils.SendSuccess(c, http.StatusOK, m)
}

// CreateMember endpoint POST /members
func (h *MemberHandler) CreateMember(c *gin.Context) {
	var req struct {
		Username string  `json:"username" binding:"required"`
		Age      int     `json:"age" binding:"min=0"`
		TeamName *string `json:"teamName,omitempty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendBadRequest(c, err.Error())
		return
	}

	m, err := h.service.Register(c.Request.Context(), req.Username, req.Age, req.TeamName)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidMember) {
			utils.SendBadRequest(c, err.Error())
			return
		}
		utils.SendClassifiedError(c, err)
		return
	}
	utils.SendSuccess(c, http.StatusCreated, m)
}

// ---------------- Parsing ----------------

type pageBody[T any] struct {
	Content []T   `json:"content"`
	Offset  int   `json:"offset"`
	Limit   int   `json:"limit"`
	Total   int64 `json:"total"`
	HasNext bool  `json:"hasNext"`
}

func pageResponse[T any](p sharedQuery.Page[T]) pageBody[T] {
	return pageBody[T]{
		Content: p.Content,
		Offset:  p.Offset,
		Limit:   p.Limit,
		Total:   p.Total,
		HasNext: p.HasNext(),
	}
}

// parseSearch lee los filtros opcionales; un parámetro vacío equivale a ausente.
func parseSearch(c *gin.Context) (domain.MemberSearchCond, []sharedQuery.Sort, error) {
	var cond domain.MemberSearchCond

	if v := c.Query("username"); v != "" {
		cond.Username = &v
	}
	if v := c.Query("teamName"); v != "" {
		cond.TeamName = &v
	}

	var err error
	if cond.AgeGoe, err = queryInt(c, "ageGoe"); err != nil {
		return cond, nil, err
	}
	if cond.AgeLoe, err = queryInt(c, "ageLoe"); err != nil {
		return cond, nil, err
	}

	var sorts []sharedQuery.Sort
	if field := c.Query("sort"); field != "" {
		sorts = append(sorts, sharedQuery.Sort{Field: field, Desc: c.Query("desc") == "true"})
	}
	return cond, sorts, nil
}

func (h *MemberHandler) parsePagination(c *gin.Context) (sharedQuery.OffsetPagination, error) {
	p := sharedQuery.OffsetPagination{Offset: 0, Limit: h.defaultPageSize}

	offset, err := queryInt(c, "offset")
	if err != nil {
		return p, err
	}
	if offset != nil {
		p.Offset = *offset
	}

	limit, err := queryInt(c, "limit")
	if err != nil {
		return p, err
	}
	if limit != nil {
		p.Limit = *limit
	}
	if h.maxPageSize > 0 && p.Limit > h.maxPageSize {
		p.Limit = h.maxPageSize
	}
	return p, nil
}

func queryInt(c *gin.Context, key string) (*int, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, sharedDomain.InvalidArgument("parse", key, "%q is not an integer", raw)
	}
	return &v, nil
}
