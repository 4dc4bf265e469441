package raster

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"
	"strconv"

	"github.com/rotisserie/eris"
)

// TIFF field types.
const (
	typeASCII  = 2
	typeShort  = 3
	typeLong   = 4
	typeDouble = 12
)

// Tags used by the writer, in ascending order as required by the format.
const (
	tagImageWidth    = 256
	tagImageLength   = 257
	tagBitsPerSample = 258
	tagCompression   = 259
	tagPhotometric   = 262
	tagStripOffsets  = 273
	tagSamplesPerPx  = 277
	tagRowsPerStrip  = 278
	tagStripCounts   = 279
	tagSampleFormat  = 339
	tagPixelScale    = 33550
	tagTiepoint      = 33922
	tagGeoKeys       = 34735
	tagGDALNoData    = 42113
)

// WriteGeoTIFF persists r as an uncompressed single-band 32-bit float
// GeoTIFF with one strip per row, georeferenced by pixel scale and a
// top-left tiepoint, with the grid's EPSG code in the GeoTIFF key
// directory and the NoData sentinel in the GDAL_NODATA tag.
func WriteGeoTIFF(path string, r *Raster) error {
	grid := r.Grid
	rows, cols := grid.Rows, grid.Cols
	le := binary.LittleEndian

	nodata := strconv.FormatFloat(r.NoData, 'g', -1, 64) + "\x00"
	if len(nodata)%2 == 1 {
		nodata += "\x00"
	}

	const numEntries = 14
	ifdEnd := 8 + 2 + numEntries*12 + 4

	// External value layout after the IFD. Strip arrays are inlined when a
	// single row makes them fit in the value field.
	stripArraysExternal := rows > 1
	off := uint32(ifdEnd)
	var offStripOffsets, offStripCounts uint32
	if stripArraysExternal {
		offStripOffsets = off
		off += uint32(rows * 4)
		offStripCounts = off
		off += uint32(rows * 4)
	}
	offScale := off
	off += 24
	offTiepoint := off
	off += 48
	offGeoKeys := off
	off += 32
	offNoData := off
	off += uint32(len(nodata))
	offPixels := off

	rowBytes := uint32(cols * 4)

	var buf bytes.Buffer
	buf.WriteString("II")
	writeLE(&buf, uint16(42))
	writeLE(&buf, uint32(8))

	// IFD.
	writeLE(&buf, uint16(numEntries))
	entry := func(tag, typ uint16, count uint32, value uint32) {
		writeLE(&buf, tag)
		writeLE(&buf, typ)
		writeLE(&buf, count)
		writeLE(&buf, value)
	}
	entryShort := func(tag uint16, v uint16) {
		writeLE(&buf, tag)
		writeLE(&buf, uint16(typeShort))
		writeLE(&buf, uint32(1))
		writeLE(&buf, v)
		writeLE(&buf, uint16(0))
	}

	entry(tagImageWidth, typeLong, 1, uint32(cols))
	entry(tagImageLength, typeLong, 1, uint32(rows))
	entryShort(tagBitsPerSample, 32)
	entryShort(tagCompression, 1) // none
	entryShort(tagPhotometric, 1) // BlackIsZero
	if stripArraysExternal {
		entry(tagStripOffsets, typeLong, uint32(rows), offStripOffsets)
	} else {
		entry(tagStripOffsets, typeLong, 1, offPixels)
	}
	entryShort(tagSamplesPerPx, 1)
	entry(tagRowsPerStrip, typeLong, 1, 1)
	if stripArraysExternal {
		entry(tagStripCounts, typeLong, uint32(rows), offStripCounts)
	} else {
		entry(tagStripCounts, typeLong, 1, rowBytes)
	}
	entryShort(tagSampleFormat, 3) // IEEE float
	entry(tagPixelScale, typeDouble, 3, offScale)
	entry(tagTiepoint, typeDouble, 6, offTiepoint)
	entry(tagGeoKeys, typeShort, 16, offGeoKeys)
	entry(tagGDALNoData, typeASCII, uint32(len(nodata)), offNoData)
	writeLE(&buf, uint32(0)) // next IFD

	// External values.
	if stripArraysExternal {
		for i := 0; i < rows; i++ {
			writeLE(&buf, offPixels+uint32(i)*rowBytes)
		}
		for i := 0; i < rows; i++ {
			writeLE(&buf, rowBytes)
		}
	}
	for _, v := range []float64{grid.CellSize, grid.CellSize, 0} {
		writeLE(&buf, math.Float64bits(v))
	}
	for _, v := range []float64{0, 0, 0, grid.MinX, grid.MaxY(), 0} {
		writeLE(&buf, math.Float64bits(v))
	}
	// GeoKeyDirectory: projected model, pixel-is-area, EPSG code.
	for _, v := range []uint16{
		1, 1, 0, 3,
		1024, 0, 1, 1,
		1025, 0, 1, 1,
		3072, 0, 1, uint16(grid.SRID),
	} {
		writeLE(&buf, v)
	}
	buf.WriteString(nodata)

	// Pixel data, row-major from the north-west corner.
	sample := make([]byte, 4)
	for _, v := range r.Data {
		le.PutUint32(sample, math.Float32bits(float32(v)))
		buf.Write(sample)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return eris.Wrapf(err, "raster: write geotiff %s", path)
	}
	return nil
}

func writeLE(buf *bytes.Buffer, v any) {
	_ = binary.Write(buf, binary.LittleEndian, v)
}
