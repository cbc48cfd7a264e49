package model

import (
	"encoding/json"
	"maps"
)

// Offer versions and types.
const (
	OfferVersionV2   = "V2"
	OfferTypeInvalid = "Invalid"
)

const offerThroughputField = "offerThroughput"

// OfferContent holds the provisioned throughput. Every other content field
// the service returns is kept in Extra and written back with the offer.
type OfferContent struct {
	OfferThroughput int                    `json:"offerThroughput" bson:"offerThroughput"`
	Extra           map[string]interface{} `json:"-" bson:",inline"`
}

func (c OfferContent) MarshalJSON() ([]byte, error) {
	fields := make(map[string]interface{}, len(c.Extra)+1)
	for k, v := range c.Extra {
		fields[k] = v
	}
	fields[offerThroughputField] = c.OfferThroughput
	return json.Marshal(fields)
}

func (c *OfferContent) UnmarshalJSON(data []byte) error {
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	*c = OfferContent{}
	if raw, ok := fields[offerThroughputField]; ok {
		if err := json.Unmarshal(raw, &c.OfferThroughput); err != nil {
			return err
		}
		delete(fields, offerThroughputField)
	}
	if len(fields) == 0 {
		return nil
	}

	c.Extra = make(map[string]interface{}, len(fields))
	for k, raw := range fields {
		var v interface{}
		if err := json.Unmarshal(raw, &v); err != nil {
			return err
		}
		c.Extra[k] = v
	}
	return nil
}

// Offer is the throughput record linked to a collection by the collection's
// self-link in ResourceLink.
type Offer struct {
	Resource        `bson:",inline"`
	OfferType       string       `json:"offerType,omitempty" bson:"offerType,omitempty"`
	OfferVersion    string       `json:"offerVersion,omitempty" bson:"offerVersion,omitempty"`
	OfferResourceID string       `json:"offerResourceId,omitempty" bson:"offerResourceId,omitempty"`
	ResourceLink    string       `json:"resource" bson:"resource"`
	Content         OfferContent `json:"content" bson:"content"`
}

// Throughput returns the provisioned throughput.
func (o *Offer) Throughput() int {
	return o.Content.OfferThroughput
}

// WithThroughput returns a copy of o carrying throughput. The copy does not
// share its content fields with o.
func (o *Offer) WithThroughput(throughput int) *Offer {
	updated := *o
	updated.Content.Extra = maps.Clone(o.Content.Extra)
	updated.Content.OfferThroughput = throughput
	return &updated
}
