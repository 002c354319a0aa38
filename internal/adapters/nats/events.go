package natsadapter

import (
	"encoding/json"
	"fmt"
	"time"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/samirrijal/geoengine/internal/core/domain"
	"github.com/samirrijal/geoengine/internal/core/geo"
)

// Subjects and streams.
const (
	SubjectLocatedPrefix = "geoengine.partner.located."
	SubjectLocatedAll    = "geoengine.partner.located.>"
	SubjectGeolocalize   = "geoengine.geolocalize.request"

	streamLocations   = "GEOENGINE_LOCATIONS"
	streamGeolocalize = "GEOENGINE_GEOLOCALIZE"
)

// EncodeLocated serializes a PartnerLocated event as a protobuf Struct.
func EncodeLocated(ev *domain.PartnerLocated) ([]byte, error) {
	fields := map[string]any{
		"partner_id": ev.PartnerID,
		"latitude":   ev.Latitude,
		"longitude":  ev.Longitude,
		"source":     ev.Source,
		"at":         ev.At.UTC().Format(time.RFC3339Nano),
		"location":   nil,
	}
	if !ev.Location.IsEmpty() {
		gj, err := ev.Location.GeoJSON()
		if err != nil {
			return nil, err
		}
		var obj map[string]any
		if err := json.Unmarshal(gj, &obj); err != nil {
			return nil, err
		}
		fields["location"] = obj
	}
	s, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("encode partner.located: %w", err)
	}
	return proto.Marshal(s)
}

// DecodeLocated is the inverse of EncodeLocated.
func DecodeLocated(data []byte) (*domain.PartnerLocated, error) {
	var s structpb.Struct
	if err := proto.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode partner.located: %w", err)
	}
	m := s.AsMap()

	ev := &domain.PartnerLocated{}
	ev.PartnerID, _ = m["partner_id"].(string)
	ev.Latitude, _ = m["latitude"].(float64)
	ev.Longitude, _ = m["longitude"].(float64)
	ev.Source, _ = m["source"].(string)
	if at, ok := m["at"].(string); ok {
		ev.At, _ = time.Parse(time.RFC3339Nano, at)
	}
	loc, err := geo.Normalize(m["location"], false)
	if err != nil {
		return nil, fmt.Errorf("decode partner.located location: %w", err)
	}
	ev.Location = loc
	return ev, nil
}

// LocatedJSON re-encodes a wire event as JSON for browser clients.
func LocatedJSON(data []byte) ([]byte, error) {
	var s structpb.Struct
	if err := proto.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return protojson.Marshal(&s)
}

// EncodeGeolocalizeRequest serializes a batch of partner ids.
func EncodeGeolocalizeRequest(ids []string) ([]byte, error) {
	values := make([]any, len(ids))
	for i, id := range ids {
		values[i] = id
	}
	s, err := structpb.NewStruct(map[string]any{"partner_ids": values})
	if err != nil {
		return nil, err
	}
	return proto.Marshal(s)
}

// DecodeGeolocalizeRequest is the inverse of EncodeGeolocalizeRequest.
func DecodeGeolocalizeRequest(data []byte) ([]string, error) {
	var s structpb.Struct
	if err := proto.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode geolocalize request: %w", err)
	}
	list := s.GetFields()["partner_ids"].GetListValue()
	if list == nil {
		return nil, fmt.Errorf("decode geolocalize request: missing partner_ids")
	}
	ids := make([]string, 0, len(list.GetValues()))
	for _, v := range list.GetValues() {
		ids = append(ids, v.GetStringValue())
	}
	return ids, nil
}
