package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/RichardKnop/machinery/v1/tasks"
	"github.com/gin-gonic/gin"

	"github.com/quarantaenehelden/notification-api/background"
	"github.com/quarantaenehelden/notification-api/store"
)

// askForHelp creates an ask-for-help document. Creation fans out the
// bookkeeping triggers: a slack alert for the moderators, stats counters,
// and optionally the legacy instant broadcast.
func (s *Server) askForHelp(c *gin.Context) {
	uid := c.GetString("uid")

	var params struct {
		Request    string `json:"request"`
		Location   string `json:"location"`
		PostalCode string `json:"plz"`
	}

	if err := c.BindJSON(&params); err != nil {
		abortWithEncoding(c, http.StatusBadRequest, errorCannotParseRequest, err)
		return
	}

	if params.Request == "" {
		abortWithEncoding(c, http.StatusBadRequest, errorInvalidParameters)
		return
	}

	request, err := s.store.CreateHelpRequest(uid, params.Request, params.Location, params.PostalCode)
	if err != nil {
		abortWithEncoding(c, http.StatusInternalServerError, errorInternalServer, err)
		return
	}

	s.slackWebhook.Post(fmt.Sprintf("%s/#/offer-help/%s\n>%s",
		s.conf.SiteURL, request.ID, strings.Replace(request.Request, "\n", "\n>", -1)))

	if err := s.store.IncrementStat("requests_total", 1); err != nil {
		log.Warnf("increment request stats with error: %s", err)
	}
	if region := regionOf(request.PostalCode); region != "" {
		if err := s.store.IncrementStat("regions."+region, 1); err != nil {
			log.Warnf("increment region stats with error: %s", err)
		}
	}

	if s.conf.BroadcastOnCreate {
		if _, err := s.backgroundEnqueuer.SendTask(&tasks.Signature{
			Name: background.TaskBroadcastNewHelp,
			Args: []tasks.Arg{
				{Type: "string", Value: request.ID},
			},
		}); err != nil {
			log.Errorf("enqueue broadcast task with error: %s", err)
		}
	}

	c.JSON(http.StatusOK, request)
}

func (s *Server) getHelp(c *gin.Context) {
	request, err := s.store.GetHelpRequest(c.Param("helpID"))
	if err == store.ErrRequestNotExist {
		abortWithEncoding(c, http.StatusNotFound, errorRequestNotExist)
		return
	} else if err != nil {
		abortWithEncoding(c, http.StatusInternalServerError, errorInternalServer, err)
		return
	}

	c.JSON(http.StatusOK, request)
}

// offerHelp creates an offer-help document and triggers the reply mail to
// the requester.
func (s *Server) offerHelp(c *gin.Context) {
	uid := c.GetString("uid")
	requestID := c.Param("helpID")

	var params struct {
		PostalCode string `json:"plz"`
		Answer     string `json:"answer"`
		Email      string `json:"email"`
	}

	if err := c.BindJSON(&params); err != nil {
		abortWithEncoding(c, http.StatusBadRequest, errorCannotParseRequest, err)
		return
	}

	if _, err := s.store.GetHelpRequest(requestID); err != nil {
		if err == store.ErrRequestNotExist {
			abortWithEncoding(c, http.StatusNotFound, errorRequestNotExist)
		} else {
			abortWithEncoding(c, http.StatusInternalServerError, errorInternalServer, err)
		}
		return
	}

	offer, err := s.store.CreateHelpOffer(requestID, uid, params.PostalCode, params.Answer, params.Email)
	if err != nil {
		abortWithEncoding(c, http.StatusInternalServerError, errorInternalServer, err)
		return
	}

	if err := s.store.IncrementStat("offers_total", 1); err != nil {
		log.Warnf("increment offer stats with error: %s", err)
	}

	if _, err := s.backgroundEnqueuer.SendTask(&tasks.Signature{
		Name: background.TaskNotifyOfferReply,
		Args: []tasks.Arg{
			{Type: "string", Value: offer.ID},
		},
	}); err != nil {
		log.Errorf("enqueue reply task with error: %s", err)
	}

	c.JSON(http.StatusOK, offer)
}

// reportHelp records a moderation report. Reaching the report threshold
// moves the request and its offers out of the public collections.
func (s *Server) reportHelp(c *gin.Context) {
	uid := c.GetString("uid")
	requestID := c.Param("helpID")

	reports, err := s.store.ReportHelpRequest(requestID, uid)
	if err == store.ErrRequestNotExist {
		abortWithEncoding(c, http.StatusNotFound, errorRequestNotExist)
		return
	} else if err != nil {
		abortWithEncoding(c, http.StatusInternalServerError, errorInternalServer, err)
		return
	}

	if err := s.store.IncrementStat("reports_total", 1); err != nil {
		log.Warnf("increment report stats with error: %s", err)
	}

	if reports >= s.conf.ReportThreshold {
		if err := s.store.MoveToDeleted(requestID); err != nil {
			abortWithEncoding(c, http.StatusInternalServerError, errorInternalServer, err)
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"result": "OK", "reports": reports})
}

// adminPurgeDeleted permanently removes moderated documents older than the
// retention window.
func (s *Server) adminPurgeDeleted(c *gin.Context) {
	var params struct {
		RetentionDays int `json:"retention_days"`
		BatchSize     int `json:"batch_size"`
	}

	if err := c.BindJSON(&params); err != nil {
		abortWithEncoding(c, http.StatusBadRequest, errorCannotParseRequest, err)
		return
	}

	if params.RetentionDays <= 0 {
		params.RetentionDays = 30
	}
	if params.BatchSize <= 0 {
		params.BatchSize = 100
	}

	before := time.Now().AddDate(0, 0, -params.RetentionDays).Unix()
	purged, err := s.store.PurgeDeleted(before, params.BatchSize)
	if err != nil {
		abortWithEncoding(c, http.StatusInternalServerError, errorInternalServer, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"result": "OK", "purged": purged})
}

// regionOf reduces a postal code to the stats region key: the higher-order
// digits that survive cutting off the last three.
func regionOf(postalCode string) string {
	if len(postalCode) <= 3 {
		return ""
	}
	return postalCode[:len(postalCode)-3]
}
