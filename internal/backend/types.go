package backend

// Node type tags understood by the bundled backends. The tag namespace is
// open: a backend may accept tags this package does not list, and unknown
// tags fail at CreateNode time, never silently.
const (
	// TypeReroute is a pass-through node with a single `in` and `out`
	// socket. The compiler creates reroutes for a builder's START/END
	// boundary sockets so nested graphs expose stable connection points.
	TypeReroute = "reroute"

	TypeSolidColor   = "solid_color"
	TypeImageTexture = "image_texture"
	TypeUVMap        = "uv_map"
	TypeGradient     = "gradient"
	TypeNoiseTexture = "noise_texture"
	TypeAdjustment   = "adjustment"
	TypeClamp        = "clamp"

	// TypeBlend composites an overlay color/alpha pair onto a base pair.
	// Properties: `mode` (blend mode name) and `opacity` (scalar).
	TypeBlend = "blend"
)

// Well-known socket names shared by the bundled node types.
const (
	SocketColor     = "Color"
	SocketAlpha     = "Alpha"
	SocketBaseColor = "Base Color"
	SocketBaseAlpha = "Base Alpha"
	SocketOverColor = "Over Color"
	SocketOverAlpha = "Over Alpha"
	SocketVector    = "Vector"
	SocketIn        = "in"
	SocketOut       = "out"
)
