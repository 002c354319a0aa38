package telemetry

// Span names used for instrumentation.
const (
	SpanGeolocalize      = "geolocalize.batch"
	SpanGeolocalizeOne   = "geolocalize.partner"
	SpanGeocodeSearch    = "geocoder.search"
	SpanImportPartners   = "import.partners"
	SpanLayerFeatures    = "layers.features"
	AttrPartnerID        = "geoengine.partner_id"
	AttrBatchSize        = "geoengine.batch_size"
	AttrImportRows       = "geoengine.import_rows"
	AttrGeocodeCandidate = "geoengine.geocode_candidates"
)
