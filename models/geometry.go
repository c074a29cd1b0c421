package models

import (
	"database/sql/driver"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// SRID is the fixed spatial reference system for all stored geometry.
const SRID = 4326

// PointZ is a 3-D point stored as geometry(POINTZ,4326). It writes
// itself as EWKT and reads back either WKT (from ST_AsText selects) or
// the hex EWKB PostGIS returns by default.
type PointZ struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// GormDBDataType implements schema.GormDBDataTypeInterface.
func (PointZ) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	return fmt.Sprintf("geometry(POINTZ,%d)", SRID)
}

// Value implements driver.Valuer.
func (p PointZ) Value() (driver.Value, error) {
	return fmt.Sprintf("SRID=%d;POINT Z(%g %g %g)", SRID, p.X, p.Y, p.Z), nil
}

// WKT renders the point as readable text for diagnostics.
func (p PointZ) WKT() string {
	return fmt.Sprintf("POINT Z(%g %g %g)", p.X, p.Y, p.Z)
}

// Scan implements sql.Scanner.
func (p *PointZ) Scan(value interface{}) error {
	if value == nil {
		return nil
	}

	var raw string
	switch v := value.(type) {
	case []byte:
		raw = string(v)
	case string:
		raw = v
	default:
		return fmt.Errorf("cannot scan %T into PointZ", value)
	}

	if strings.Contains(raw, "POINT") {
		return p.parseWKT(raw)
	}
	return p.parseEWKBHex(raw)
}

// parseWKT parses "POINT Z(x y z)" and "SRID=n;POINT Z(x y z)" forms.
// 2-D "POINT(x y)" is accepted with z left at zero.
func (p *PointZ) parseWKT(s string) error {
	if idx := strings.Index(s, ";"); idx >= 0 {
		s = s[idx+1:]
	}
	open := strings.Index(s, "(")
	end := strings.LastIndex(s, ")")
	if open < 0 || end < open {
		return fmt.Errorf("malformed point WKT: %q", s)
	}

	fields := strings.Fields(s[open+1 : end])
	if len(fields) < 2 {
		return fmt.Errorf("malformed point WKT: %q", s)
	}

	coords := make([]float64, 0, 3)
	for _, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return fmt.Errorf("malformed point coordinate %q: %w", f, err)
		}
		coords = append(coords, v)
	}

	p.X, p.Y = coords[0], coords[1]
	if len(coords) > 2 {
		p.Z = coords[2]
	}
	return nil
}

const (
	ewkbZFlag    = 0x80000000
	ewkbSRIDFlag = 0x20000000
	wkbPoint     = 1
)

// parseEWKBHex decodes the hex EWKB encoding of a single point, which
// is what PostGIS hands back for a plain geometry column select.
func (p *PointZ) parseEWKBHex(s string) error {
	data, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("invalid EWKB hex: %w", err)
	}
	if len(data) < 5 {
		return fmt.Errorf("EWKB too short: %d bytes", len(data))
	}

	var order binary.ByteOrder = binary.LittleEndian
	if data[0] == 0 {
		order = binary.BigEndian
	}

	gtype := order.Uint32(data[1:5])
	offset := 5
	if gtype&ewkbSRIDFlag != 0 {
		offset += 4 // skip embedded SRID
	}

	if gtype&^uint32(ewkbZFlag|ewkbSRIDFlag) != wkbPoint {
		return fmt.Errorf("unexpected geometry type %#x, want point", gtype)
	}

	dims := 2
	if gtype&ewkbZFlag != 0 {
		dims = 3
	}
	if len(data) < offset+dims*8 {
		return fmt.Errorf("EWKB too short for %d-dimensional point", dims)
	}

	p.X = math.Float64frombits(order.Uint64(data[offset : offset+8]))
	p.Y = math.Float64frombits(order.Uint64(data[offset+8 : offset+16]))
	if dims == 3 {
		p.Z = math.Float64frombits(order.Uint64(data[offset+16 : offset+24]))
	}
	return nil
}
