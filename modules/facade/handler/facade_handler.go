// Package handler exposes the Facade's operations over HTTP: one route per
// public query/ingest operation, with query/body parameters parsed at the
// boundary and domain errors mapped to HTTP status codes by error kind.
package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	httpPlatform "github.com/davidkwan/orggraph/internal/platform/http"
	facademodel "github.com/davidkwan/orggraph/modules/facade/model"
	"github.com/davidkwan/orggraph/modules/facade/service"
	ingestmodel "github.com/davidkwan/orggraph/modules/ingest/model"
	nrmodel "github.com/davidkwan/orggraph/modules/nameresolver/model"
	querymodel "github.com/davidkwan/orggraph/modules/query/model"
	"github.com/gin-gonic/gin"
)

const dateLayout = "2006-01-02"

// FacadeHandler adapts Facade to gin, the teacher's HTTP layer of choice.
type FacadeHandler struct {
	facade *service.Facade
}

func NewFacadeHandler(facade *service.Facade) *FacadeHandler {
	return &FacadeHandler{facade: facade}
}

// respondError maps a facade error to an HTTP status by its kind.
func respondError(c *gin.Context, err error) {
	kind := facademodel.GetErrorKind(err)
	message := facademodel.GetErrorMessage(err)

	status := http.StatusInternalServerError
	switch kind {
	case facademodel.KindInvalidArgument:
		status = http.StatusBadRequest
	case facademodel.KindNotFound:
		status = http.StatusNotFound
	case facademodel.KindDependencyUnavailable:
		status = http.StatusServiceUnavailable
	}
	httpPlatform.RespondWithError(c, status, string(kind), message)
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, facademodel.ErrInvalidDate
	}
	return t, nil
}

func parseFuzzyQuery(c *gin.Context) querymodel.FuzzyOptions {
	if c.Query("fuzzy") != "true" {
		return querymodel.ExactMatch()
	}
	limit := nrmodel.DefaultMaxSimilarNames
	if v, err := strconv.Atoi(c.Query("fuzzy_limit")); err == nil && v > 0 {
		limit = v
	}
	return querymodel.Fuzzy(nrmodel.DefaultOptions(limit))
}

func parseIDList(raw string) []int64 {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

func parseBoolQuery(c *gin.Context, key string) bool {
	return c.Query(key) == "true"
}

// FindColleagues godoc
// @Summary Find colleagues
// @Description Find everyone who shared an organization with a person, optionally at a specific date
// @Tags facade
// @Produce json
// @Param name query string true "Person name"
// @Param date query string false "ISO-8601 date (YYYY-MM-DD); omitted = any time"
// @Param fuzzy query bool false "Expand name through fuzzy resolution"
// @Success 200 {array} model.ColleagueResult
// @Failure 400 {object} httpPlatform.ErrorResponse
// @Failure 500 {object} httpPlatform.ErrorResponse
// @Router /colleagues [get]
func (h *FacadeHandler) FindColleagues(c *gin.Context) {
	name := c.Query("name")
	if name == "" {
		httpPlatform.RespondWithError(c, http.StatusBadRequest, string(facademodel.KindInvalidArgument), "name is required")
		return
	}

	var datePtr *time.Time
	if raw := c.Query("date"); raw != "" {
		d, err := parseDate(raw)
		if err != nil {
			respondError(c, err)
			return
		}
		datePtr = &d
	}

	results, err := h.facade.FindColleagues(c.Request.Context(), name, datePtr, parseFuzzyQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}
	httpPlatform.RespondWithData(c, http.StatusOK, results)
}

// FindPersonByName godoc
// @Summary Find a person by name
// @Description Resolve a name to its stored identities, optionally enriched with career and ancestor-chain data
// @Tags facade
// @Produce json
// @Param name query string true "Person name"
// @Param fuzzy query bool false "Expand name through fuzzy resolution"
// @Param include_profile query bool false "Attach the career list"
// @Param include_ancestors query bool false "Attach the ancestor chain of the most recent unit"
// @Success 200 {array} model.PersonResult
// @Failure 400 {object} httpPlatform.ErrorResponse
// @Failure 500 {object} httpPlatform.ErrorResponse
// @Router /people [get]
func (h *FacadeHandler) FindPersonByName(c *gin.Context) {
	name := c.Query("name")
	if name == "" {
		httpPlatform.RespondWithError(c, http.StatusBadRequest, string(facademodel.KindInvalidArgument), "name is required")
		return
	}
	fuzzy := parseBoolQuery(c, "fuzzy")

	results, err := h.facade.FindPersonByName(c.Request.Context(), name, fuzzy, nrmodel.DefaultOptions(nrmodel.DefaultMaxSimilarNames),
		parseBoolQuery(c, "include_profile"), parseBoolQuery(c, "include_ancestors"))
	if err != nil {
		respondError(c, err)
		return
	}
	httpPlatform.RespondWithData(c, http.StatusOK, results)
}

// CareerProgressionByName godoc
// @Summary Career progression by name
// @Description Return a person's employment history ordered by start date
// @Tags facade
// @Produce json
// @Param name query string true "Person name"
// @Param fuzzy query bool false "Expand name through fuzzy resolution"
// @Param get_parent_orgs query bool false "Attach each entry's ancestor chain"
// @Param cluster_by_rank_and_entity query bool false "Merge entries sharing a rank and unit"
// @Success 200 {array} model.CareerEntry
// @Failure 400 {object} httpPlatform.ErrorResponse
// @Failure 500 {object} httpPlatform.ErrorResponse
// @Router /career/by-name [get]
func (h *FacadeHandler) CareerProgressionByName(c *gin.Context) {
	name := c.Query("name")
	if name == "" {
		httpPlatform.RespondWithError(c, http.StatusBadRequest, string(facademodel.KindInvalidArgument), "name is required")
		return
	}

	entries, err := h.facade.CareerProgressionByName(c.Request.Context(), name, parseFuzzyQuery(c),
		parseBoolQuery(c, "get_parent_orgs"), parseBoolQuery(c, "cluster_by_rank_and_entity"))
	if err != nil {
		respondError(c, err)
		return
	}
	httpPlatform.RespondWithData(c, http.StatusOK, entries)
}

// CareerProgressionByPersonID godoc
// @Summary Career progression by person id
// @Description Return a person's employment history ordered by start date
// @Tags facade
// @Produce json
// @Param id path int true "Person ID"
// @Param get_parent_orgs query bool false "Attach each entry's ancestor chain"
// @Success 200 {array} model.CareerEntry
// @Failure 400 {object} httpPlatform.ErrorResponse
// @Failure 500 {object} httpPlatform.ErrorResponse
// @Router /people/{id}/career [get]
func (h *FacadeHandler) CareerProgressionByPersonID(c *gin.Context) {
	personID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		httpPlatform.RespondWithError(c, http.StatusBadRequest, string(facademodel.KindInvalidArgument), "invalid person id")
		return
	}

	entries, err := h.facade.CareerProgressionByPersonID(c.Request.Context(), personID, parseBoolQuery(c, "get_parent_orgs"))
	if err != nil {
		respondError(c, err)
		return
	}
	httpPlatform.RespondWithData(c, http.StatusOK, entries)
}

// NetworkSnapshot godoc
// @Summary Network snapshot
// @Description Return every employment active at a given date
// @Tags facade
// @Produce json
// @Param date query string true "ISO-8601 date (YYYY-MM-DD)"
// @Success 200 {array} model.NetworkSnapshotEntry
// @Failure 400 {object} httpPlatform.ErrorResponse
// @Failure 500 {object} httpPlatform.ErrorResponse
// @Router /network-snapshot [get]
func (h *FacadeHandler) NetworkSnapshot(c *gin.Context) {
	d, err := parseDate(c.Query("date"))
	if err != nil || c.Query("date") == "" {
		respondError(c, facademodel.ErrInvalidDate)
		return
	}

	entries, err := h.facade.NetworkSnapshot(c.Request.Context(), d)
	if err != nil {
		respondError(c, err)
		return
	}
	httpPlatform.RespondWithData(c, http.StatusOK, entries)
}

// FindPeopleByTemporalOverlap godoc
// @Summary Find people by temporal overlap
// @Description Find people sharing a unit family and an overlapping interval with a person
// @Tags facade
// @Produce json
// @Param id path int true "Person ID"
// @Param name_filter query string false "Restrict to names matching this filter"
// @Param limit query int false "Max results (ignored when name_filter is set)"
// @Success 200 {array} model.OverlappingMatch
// @Failure 400 {object} httpPlatform.ErrorResponse
// @Failure 500 {object} httpPlatform.ErrorResponse
// @Router /people/{id}/overlap [get]
func (h *FacadeHandler) FindPeopleByTemporalOverlap(c *gin.Context) {
	personID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		httpPlatform.RespondWithError(c, http.StatusBadRequest, string(facademodel.KindInvalidArgument), "invalid person id")
		return
	}
	limit := 20
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 {
		limit = v
	}

	matches, err := h.facade.FindPeopleByTemporalOverlap(c.Request.Context(), personID, c.Query("name_filter"), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	httpPlatform.RespondWithData(c, http.StatusOK, matches)
}

// FindMostRecentEmployment godoc
// @Summary Find most recent employment
// @Description Return a person's single most-recent employment row
// @Tags facade
// @Produce json
// @Param id path int true "Person ID"
// @Success 200 {object} model.Enriched
// @Failure 404 {object} httpPlatform.ErrorResponse
// @Failure 500 {object} httpPlatform.ErrorResponse
// @Router /people/{id}/most-recent-employment [get]
func (h *FacadeHandler) FindMostRecentEmployment(c *gin.Context) {
	personID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		httpPlatform.RespondWithError(c, http.StatusBadRequest, string(facademodel.KindInvalidArgument), "invalid person id")
		return
	}

	employment, err := h.facade.FindMostRecentEmployment(c.Request.Context(), personID)
	if err != nil {
		respondError(c, err)
		return
	}
	httpPlatform.RespondWithData(c, http.StatusOK, employment)
}

// ShortestPath godoc
// @Summary Shortest path
// @Description Find the shortest path between two sets of people, over the colleague or full graph
// @Tags facade
// @Produce json
// @Param a_ids query string true "Comma-separated source person ids"
// @Param b_ids query string true "Comma-separated target person ids"
// @Param temporal query bool false "Use the verified-colleague graph instead of the full history graph"
// @Param people_only query bool false "Drop organization stepping-stones from the path"
// @Param include_metadata query bool false "Attach each person's career"
// @Success 200 {array} model.PathStepWithMetadata
// @Failure 400 {object} httpPlatform.ErrorResponse
// @Failure 500 {object} httpPlatform.ErrorResponse
// @Router /shortest-path [get]
func (h *FacadeHandler) ShortestPath(c *gin.Context) {
	aIDs := parseIDList(c.Query("a_ids"))
	bIDs := parseIDList(c.Query("b_ids"))

	steps, err := h.facade.ShortestPath(c.Request.Context(), aIDs, bIDs,
		parseBoolQuery(c, "temporal"), parseBoolQuery(c, "people_only"), parseBoolQuery(c, "include_metadata"))
	if err != nil {
		respondError(c, err)
		return
	}
	httpPlatform.RespondWithData(c, http.StatusOK, steps)
}

// GetBaseOrganizations godoc
// @Summary Get base organizations
// @Description Return the top-level organizations
// @Tags facade
// @Produce json
// @Success 200 {array} model.Organization
// @Failure 500 {object} httpPlatform.ErrorResponse
// @Router /organizations/base [get]
func (h *FacadeHandler) GetBaseOrganizations(c *gin.Context) {
	orgs, err := h.facade.GetBaseOrganizations(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	httpPlatform.RespondWithData(c, http.StatusOK, orgs)
}

// GetActiveDescendants godoc
// @Summary Get active descendants
// @Description Return an organization's descendants active on a given date
// @Tags facade
// @Produce json
// @Param id path int true "Organization ID"
// @Param date query string true "ISO-8601 date (YYYY-MM-DD)"
// @Success 200 {array} model.Organization
// @Failure 400 {object} httpPlatform.ErrorResponse
// @Failure 500 {object} httpPlatform.ErrorResponse
// @Router /organizations/{id}/active-descendants [get]
func (h *FacadeHandler) GetActiveDescendants(c *gin.Context) {
	rootID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		httpPlatform.RespondWithError(c, http.StatusBadRequest, string(facademodel.KindInvalidArgument), "invalid organization id")
		return
	}
	raw := c.Query("date")
	if _, err := parseDate(raw); raw == "" || err != nil {
		respondError(c, facademodel.ErrInvalidDate)
		return
	}

	orgs, err := h.facade.GetActiveDescendants(c.Request.Context(), rootID, raw)
	if err != nil {
		respondError(c, err)
		return
	}
	httpPlatform.RespondWithData(c, http.StatusOK, orgs)
}

// GetOrgTimelineDates godoc
// @Summary Get organization timeline dates
// @Description Return a subtree's structural change dates
// @Tags facade
// @Produce json
// @Param id path int true "Organization ID"
// @Param distinct query bool false "Collapse adjacent dates with identical descendant sets"
// @Success 200 {array} string
// @Failure 400 {object} httpPlatform.ErrorResponse
// @Failure 500 {object} httpPlatform.ErrorResponse
// @Router /organizations/{id}/timeline [get]
func (h *FacadeHandler) GetOrgTimelineDates(c *gin.Context) {
	rootID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		httpPlatform.RespondWithError(c, http.StatusBadRequest, string(facademodel.KindInvalidArgument), "invalid organization id")
		return
	}

	dates, err := h.facade.GetOrgTimelineDates(c.Request.Context(), rootID, parseBoolQuery(c, "distinct"))
	if err != nil {
		respondError(c, err)
		return
	}
	httpPlatform.RespondWithData(c, http.StatusOK, dates)
}

// GetOrgDescendantsDiff godoc
// @Summary Get organization descendants diff
// @Description Report which descendants were added, removed, or unchanged between two dates
// @Tags facade
// @Produce json
// @Param id path int true "Organization ID"
// @Param d1 query string true "ISO-8601 start date (YYYY-MM-DD)"
// @Param d2 query string true "ISO-8601 end date (YYYY-MM-DD)"
// @Success 200 {array} model.DescendantDiffEntry
// @Failure 400 {object} httpPlatform.ErrorResponse
// @Failure 500 {object} httpPlatform.ErrorResponse
// @Router /organizations/{id}/diff [get]
func (h *FacadeHandler) GetOrgDescendantsDiff(c *gin.Context) {
	rootID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		httpPlatform.RespondWithError(c, http.StatusBadRequest, string(facademodel.KindInvalidArgument), "invalid organization id")
		return
	}
	d1, d2 := c.Query("d1"), c.Query("d2")
	if _, err := parseDate(d1); d1 == "" || err != nil {
		respondError(c, facademodel.ErrInvalidDate)
		return
	}
	if _, err := parseDate(d2); d2 == "" || err != nil {
		respondError(c, facademodel.ErrInvalidDate)
		return
	}

	diff, err := h.facade.GetOrgDescendantsDiff(c.Request.Context(), rootID, d1, d2)
	if err != nil {
		respondError(c, err)
		return
	}
	httpPlatform.RespondWithData(c, http.StatusOK, diff)
}

// BulkInsertRecords godoc
// @Summary Bulk insert employment records
// @Description Load a batch of raw employment records through identity disambiguation
// @Tags facade
// @Accept json
// @Produce json
// @Param request body []ingestmodel.RawRecord true "Raw records"
// @Param batch_size query int false "Override the default ingest batch size"
// @Success 200 {object} model.BulkInsertResult
// @Failure 400 {object} httpPlatform.ErrorResponse
// @Failure 500 {object} httpPlatform.ErrorResponse
// @Router /ingest/records [post]
func (h *FacadeHandler) BulkInsertRecords(c *gin.Context) {
	var records []ingestmodel.RawRecord
	if err := c.ShouldBindJSON(&records); err != nil {
		httpPlatform.RespondWithError(c, http.StatusBadRequest, string(facademodel.KindInvalidArgument), "invalid request payload")
		return
	}
	batchSize := 0
	if v, err := strconv.Atoi(c.Query("batch_size")); err == nil {
		batchSize = v
	}

	result, err := h.facade.BulkInsertRecords(c.Request.Context(), records, batchSize)
	if err != nil {
		// BulkInsertRecords counts per-record failures internally, so a
		// non-nil error here means something beyond item-level failure
		// (e.g. the colleague_pairs refresh itself failed); still report
		// whatever counts were gathered.
		httpPlatform.RespondWithData(c, http.StatusOK, result)
		return
	}
	httpPlatform.RespondWithData(c, http.StatusOK, result)
}

// updateParentOrgRequest is the body accepted by UpdateParentOrg. ParentOrgID
// is a pointer so an explicit null clears the link, making the organization
// top-level, distinct from the field being omitted.
type updateParentOrgRequest struct {
	ParentOrgID *int64 `json:"parent_org_id"`
}

// UpdateParentOrg godoc
// @Summary Update an organization's parent link
// @Description Re-parent an organization under another, or clear its parent to make it top-level
// @Tags facade
// @Accept json
// @Produce json
// @Param id path int true "Organization ID"
// @Param request body updateParentOrgRequest true "New parent org id, or null for top-level"
// @Success 204
// @Failure 400 {object} httpPlatform.ErrorResponse
// @Failure 404 {object} httpPlatform.ErrorResponse
// @Failure 500 {object} httpPlatform.ErrorResponse
// @Router /organizations/{id}/parent [put]
func (h *FacadeHandler) UpdateParentOrg(c *gin.Context) {
	orgID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		httpPlatform.RespondWithError(c, http.StatusBadRequest, string(facademodel.KindInvalidArgument), "invalid organization id")
		return
	}

	var req updateParentOrgRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpPlatform.RespondWithError(c, http.StatusBadRequest, string(facademodel.KindInvalidArgument), "invalid request payload")
		return
	}

	if err := h.facade.UpdateParentOrg(c.Request.Context(), orgID, req.ParentOrgID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RegisterRoutes registers every facade operation under router. The query
// surface has no notion of request ownership and is left open; only the
// two mutating routes (bulk ingest and the parent-link update) are guarded
// by writeAccess, the bearer-token
// middleware that authorizes callers of write endpoints (see
// internal/platform/auth).
func (h *FacadeHandler) RegisterRoutes(router *gin.RouterGroup, writeAccess gin.HandlerFunc) {
	router.GET("/colleagues", h.FindColleagues)
	router.GET("/people", h.FindPersonByName)
	router.GET("/career/by-name", h.CareerProgressionByName)
	router.GET("/people/:id/career", h.CareerProgressionByPersonID)
	router.GET("/network-snapshot", h.NetworkSnapshot)
	router.GET("/people/:id/overlap", h.FindPeopleByTemporalOverlap)
	router.GET("/people/:id/most-recent-employment", h.FindMostRecentEmployment)
	router.GET("/shortest-path", h.ShortestPath)
	router.GET("/organizations/base", h.GetBaseOrganizations)
	router.GET("/organizations/:id/active-descendants", h.GetActiveDescendants)
	router.GET("/organizations/:id/timeline", h.GetOrgTimelineDates)
	router.GET("/organizations/:id/diff", h.GetOrgDescendantsDiff)
	router.POST("/ingest/records", writeAccess, h.BulkInsertRecords)
	router.PUT("/organizations/:id/parent", writeAccess, h.UpdateParentOrg)
}
