// Package venues holds the compiled-in set of spot and futures venues this
// scanner supports, with their fee constants and wire parameters. Venues are
// not discovered at runtime — they are a fixed registry, per spec §9 "Duck-
// typed ticker shape" and the original source's module-level config lists.
package venues

// Kind distinguishes spot venues (KRW-quoted) from futures venues
// (USDT-settled perpetual swaps).
type Kind string

const (
	KindSpot    Kind = "spot"
	KindFutures Kind = "futures"
)

// Venue is one compiled-in exchange entry.
type Venue struct {
	ID            string
	Kind          Kind
	TakerFee      float64 // fraction, e.g. 0.0005 = 5bps
	WSURL         string
	ChunkSize     int
	PingInterval  int // seconds; 0 means the venue relies on frame-level pings only
}

// Taker fee constants, taken verbatim from the Python original's
// SPOT_FEES / OKX_FEE / GATE_FEE / HL_FEE module-level dictionaries.
const (
	UpbitFee       = 0.0005
	BithumbFee     = 0.0004
	OKXFee         = 0.0005
	GateFee        = 0.0005
	HyperliquidFee = 0.00035
)

// Spot venues.
var (
	Upbit = Venue{
		ID: "upbit", Kind: KindSpot, TakerFee: UpbitFee,
		WSURL: "wss://sg-api.upbit.com/websocket/v1", ChunkSize: 50,
	}
	Bithumb = Venue{
		ID: "bithumb", Kind: KindSpot, TakerFee: BithumbFee,
		WSURL: "wss://ws-api.bithumb.com/websocket/v1", ChunkSize: 50,
	}
)

// Futures venues.
var (
	OKX = Venue{
		ID: "okx", Kind: KindFutures, TakerFee: OKXFee,
		WSURL: "wss://ws.okx.com:8443/ws/v5/public", ChunkSize: 20,
	}
	Gate = Venue{
		ID: "gate", Kind: KindFutures, TakerFee: GateFee,
		WSURL: "wss://fx-ws.gateio.ws/v4/ws/usdt", ChunkSize: 30,
	}
	Hyperliquid = Venue{
		ID: "hyperliquid", Kind: KindFutures, TakerFee: HyperliquidFee,
		WSURL: "wss://api.hyperliquid.xyz/ws", ChunkSize: 40, PingInterval: 30,
	}
)

// DefaultSpotVenues is the set of KRW spot venues enabled unless disabled by
// --no-upbit / --no-bithumb.
func DefaultSpotVenues() []Venue { return []Venue{Upbit, Bithumb} }

// AllFuturesVenues is the full set of futures venues selectable via --futures.
func AllFuturesVenues() []Venue { return []Venue{OKX, Gate, Hyperliquid} }

// FuturesByID resolves one of the --futures comma-list tokens
// (okx, gate, hyper) to its Venue.
func FuturesByID(id string) (Venue, bool) {
	switch id {
	case "okx":
		return OKX, true
	case "gate":
		return Gate, true
	case "hyper", "hyperliquid":
		return Hyperliquid, true
	default:
		return Venue{}, false
	}
}
