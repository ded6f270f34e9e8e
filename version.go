package waybill

// Version is set at build time with -ldflags "-X github.com/hazriqpedia/waybill.Version=...".
var Version = "dev"
