package schema

const (
	HelpRequestCollection = "askforhelp"
	HelpOfferCollection   = "offerhelp"
	DeletedCollection     = "deleted"
	StatsCollection       = "stats"

	StatsOverviewID = "overview"
)

// GeoJSON - mongo location format
type GeoJSON struct {
	Type        string    `bson:"type"`
	Coordinates []float64 `bson:"coordinates"`
}

// Location - represents a point on earth
type Location struct {
	Latitude  float64 `bson:"latitude" json:"latitude"`
	Longitude float64 `bson:"longitude" json:"longitude"`
}

// HelpRequest is an ask-for-help document. The notification counter and the
// receiver set are only ever mutated through atomic update operators.
type HelpRequest struct {
	ID                   string   `bson:"_id" json:"id"`
	UID                  string   `bson:"uid" json:"uid"`
	Request              string   `bson:"request" json:"request"`
	Location             string   `bson:"location" json:"location"`
	PostalCode           string   `bson:"plz" json:"plz"`
	Timestamp            int64    `bson:"timestamp" json:"timestamp"`
	NotificationCounter  int      `bson:"notification_counter" json:"notification_counter"`
	NotificationReceiver []string `bson:"notification_receiver" json:"notification_receiver"`
	ReportedBy           []string `bson:"reported_by" json:"reported_by"`
	Coordinates          *GeoJSON `bson:"coordinates,omitempty" json:"-"`
}

// HelpOffer is an offer-help document attached to a help request.
type HelpOffer struct {
	ID          string   `bson:"_id" json:"id"`
	RequestID   string   `bson:"request_id" json:"request_id"`
	UID         string   `bson:"uid" json:"uid"`
	PostalCode  string   `bson:"plz" json:"plz"`
	Answer      string   `bson:"answer" json:"answer"`
	Email       string   `bson:"email" json:"email"`
	Timestamp   int64    `bson:"timestamp" json:"timestamp"`
	Coordinates *GeoJSON `bson:"coordinates,omitempty" json:"-"`
}

// DeletedDocument wraps a moderated document moved out of its collection.
type DeletedDocument struct {
	ID         string      `bson:"_id"`
	Collection string      `bson:"collection"`
	Document   interface{} `bson:"document"`
	DeletedAt  int64       `bson:"deleted_at"`
}

// Notified reports whether an offer uid has already received a notification
// for this request.
func (r *HelpRequest) Notified(offerUID string) bool {
	for _, uid := range r.NotificationReceiver {
		if uid == offerUID {
			return true
		}
	}
	return false
}
