package ppu

// TileData represents an 8x8 pixel tile
type TileData struct {
	LowByte  uint8 // Low bit plane
	HighByte uint8 // High bit plane
}

// SpriteData represents sprite attribute data
type SpriteData struct {
	Y          uint8 // Y position - 1
	TileIndex  uint8 // Tile index
	Attributes uint8 // Attributes (palette, priority, flip)
	X          uint8 // X position
}

// BackgroundTile represents a background tile with attributes
type BackgroundTile struct {
	TileIndex  uint8 // Tile index from nametable
	Attributes uint8 // Attribute data (palette selection)
	PatternLo  uint8 // Low bit plane
	PatternHi  uint8 // High bit plane
}

// SpriteInfo represents a sprite with its OAM index
type SpriteInfo struct {
	SpriteData
	OAMIndex int // Original index in OAM (for sprite 0 detection)
}

// Sprite attribute flags
const (
	SpriteFlipHorizontal = 0x40
	SpriteFlipVertical   = 0x80
	SpritePriority       = 0x20 // 0=front of background, 1=behind background
	SpritePaletteMask    = 0x03 // Palette selection (bits 0-1)
)

// bgTileCache caches the most recently fetched background tile per-PPU (not
// a package global) so adjacent pixels within the same 8x8 tile don't
// re-walk the nametable/attribute/pattern-table fetch chain.
type tileCache struct {
	valid      bool
	attributes uint8
	patternLo  uint8
	patternHi  uint8
	tileX      int
	tileY      int
}

// fetchBackgroundTileWithScroll fetches tile data for background rendering with proper scroll handling
func (p *PPU) fetchBackgroundTileWithScroll(tileX, tileY, pixelY int) BackgroundTile {
	// Use PPU v register to determine scroll offset
	coarseX := int(p.v & 0x1F)        // Bits 0-4: coarse X scroll
	coarseY := int((p.v >> 5) & 0x1F) // Bits 5-9: coarse Y scroll

	// Calculate scrolled tile coordinates
	scrolledTileX := coarseX + tileX

	// For Y: fine Y scroll can affect tile selection when it wraps
	fineY := int((p.v >> 12) & 0x07) // Bits 12-14: fine Y scroll
	effectiveTileY := tileY
	if (pixelY + fineY) >= 8 {
		effectiveTileY += 1 // Fine Y overflow causes tile selection change
	}
	scrolledTileY := coarseY + effectiveTileY

	// Determine nametable selection
	nameTableX := 0
	nameTableY := 0

	if scrolledTileX >= 32 {
		nameTableX = 1
		scrolledTileX -= 32
	}
	if scrolledTileY >= 30 {
		nameTableY = 1
		scrolledTileY -= 30
	}

	baseNTX := int(p.v>>10) & 1 // Bit 10: nametable X
	baseNTY := int(p.v>>11) & 1 // Bit 11: nametable Y

	finalNTX := (baseNTX + nameTableX) % 2
	finalNTY := (baseNTY + nameTableY) % 2

	nameTableIndex := finalNTY*2 + finalNTX
	nameTableBase := uint16(0x2000) + uint16(nameTableIndex)*0x400
	nameTableAddr := nameTableBase + uint16(scrolledTileY*32+scrolledTileX)

	tileIndex := p.readVRAM(nameTableAddr)

	attrAddr := nameTableBase + 0x3C0 + uint16((scrolledTileY/4)*8+(scrolledTileX/4))
	attrByte := p.readVRAM(attrAddr)

	attrShift := ((scrolledTileY & 2) * 2) + ((scrolledTileX&2)/2)*2
	attributes := (attrByte >> attrShift) & 0x03

	patternTableBase := uint16(0x0000)
	if p.PPUCTRL&PPUCTRLBGTable != 0 {
		patternTableBase = 0x1000
	}

	tileAddr := patternTableBase + uint16(tileIndex)*16

	fineY = int((p.v >> 12) & 0x07)
	adjustedPixelY := (pixelY + fineY) % 8

	tileRow := uint16(adjustedPixelY)
	patternLoAddr := tileAddr + tileRow
	patternHiAddr := tileAddr + tileRow + 8

	patternLo := p.readVRAM(patternLoAddr)
	patternHi := p.readVRAM(patternHiAddr)

	return BackgroundTile{
		TileIndex:  tileIndex,
		Attributes: attributes,
		PatternLo:  patternLo,
		PatternHi:  patternHi,
	}
}

// getPixelColor extracts pixel color from tile pattern data
func getPixelColor(patternLo, patternHi uint8, pixelX int) uint8 {
	bitPos := 7 - pixelX
	lowBit := (patternLo >> bitPos) & 1
	highBit := (patternHi >> bitPos) & 1
	return (highBit << 1) | lowBit
}

// renderBackgroundPixel renders a single background pixel and returns its
// palette index (0 for the universal backdrop) plus whether it was opaque.
func (p *PPU) renderBackgroundPixel(x, y int) (uint8, bool) {
	if p.PPUMASK&PPUMASKBGShow == 0 {
		return p.PaletteManager.GetBackgroundColorIndex(0, 0), false
	}
	if x < 8 && p.PPUMASK&PPUMASKBGLeft == 0 {
		return p.PaletteManager.GetBackgroundColorIndex(0, 0), false
	}

	fineX := int(p.x)
	adjustedX := x + fineX
	tileX := adjustedX / 8
	pixelX := adjustedX % 8
	tileY := y / 8
	pixelY := y % 8

	if !p.bgCache.valid || p.bgCache.tileX != tileX || p.bgCache.tileY != tileY {
		tile := p.fetchBackgroundTileWithScroll(tileX, tileY, pixelY)
		p.bgCache = tileCache{
			valid:      true,
			attributes: tile.Attributes,
			patternLo:  tile.PatternLo,
			patternHi:  tile.PatternHi,
			tileX:      tileX,
			tileY:      tileY,
		}
	}

	colorIndex := getPixelColor(p.bgCache.patternLo, p.bgCache.patternHi, pixelX)
	return p.PaletteManager.GetBackgroundColorIndex(p.bgCache.attributes, colorIndex), colorIndex != 0
}

// evaluateSprites scans OAM for up to 8 sprites visible on the given
// scanline and reproduces the documented hardware overflow-detection bug:
// once 8 sprites have been found, evaluation continues scanning Y bytes at
// the normal +4 stride instead of restarting at the correct per-sprite
// offset, so the overflow flag is set based on a diagonal, not a column, of
// OAM and can both false-positive and false-negative relative to a "true"
// 9th-sprite check.
func (p *PPU) evaluateSprites(scanline int) []SpriteInfo {
	spriteHeight := 8
	if p.PPUCTRL&PPUCTRLSpriteSize != 0 {
		spriteHeight = 16
	}

	var sprites []SpriteInfo
	n := 0
	for ; n < 64; n++ {
		spriteY := int(p.OAM[n*4])
		if scanline >= spriteY && scanline < spriteY+spriteHeight {
			sprites = append(sprites, SpriteInfo{
				SpriteData: SpriteData{
					Y:          p.OAM[n*4],
					TileIndex:  p.OAM[n*4+1],
					Attributes: p.OAM[n*4+2],
					X:          p.OAM[n*4+3],
				},
				OAMIndex: n,
			})
			if len(sprites) == 8 {
				n++
				break
			}
		}
	}

	// Buggy overflow scan: the real PPU keeps incrementing both the sprite
	// index and an internal byte offset together once the secondary OAM is
	// full, "sliding" diagonally through OAM instead of checking Y bytes
	// only, until it either finds a sprite in range (setting overflow) or
	// wraps back to sprite 0.
	if len(sprites) == 8 {
		m := uint(0)
		for i := n; i < 64; i++ {
			checkAddr := uint(i*4) + m
			y := int(p.OAM[checkAddr&0xFF])
			if scanline >= y && scanline < y+spriteHeight {
				p.PPUSTATUS |= 0x20
				break
			}
			m = (m + 1) & 0x03
		}
	}

	return sprites
}

// renderSpritePixel renders sprite pixels for a given position. Returns the
// palette index, whether it's in front of the background, and whether this
// is an opaque pixel of OAM sprite 0.
func (p *PPU) renderSpritePixel(x, y int, sprites []SpriteInfo) (uint8, bool, bool, bool) {
	if p.PPUMASK&PPUMASKSpriteShow == 0 {
		return 0, false, false, false
	}
	if x < 8 && p.PPUMASK&PPUMASKSpriteLeft == 0 {
		return 0, false, false, false
	}

	spriteHeight := 8
	if p.PPUCTRL&PPUCTRLSpriteSize != 0 {
		spriteHeight = 16
	}

	for _, sprite := range sprites {
		spriteX := int(sprite.X)
		spriteY := int(sprite.Y)

		if x >= spriteX && x < spriteX+8 && y >= spriteY && y < spriteY+spriteHeight {
			pixelX := x - spriteX
			pixelY := y - spriteY

			if sprite.Attributes&SpriteFlipHorizontal != 0 {
				pixelX = 7 - pixelX
			}
			if sprite.Attributes&SpriteFlipVertical != 0 {
				pixelY = (spriteHeight - 1) - pixelY
			}

			patternTableBase := uint16(0x0000)
			if p.PPUCTRL&PPUCTRLSpriteTable != 0 {
				patternTableBase = 0x1000
			}

			var tileAddr uint16
			if spriteHeight == 16 {
				tileIndex := sprite.TileIndex & 0xFE
				if pixelY >= 8 {
					tileIndex++
					pixelY -= 8
				}
				if sprite.TileIndex&1 != 0 {
					patternTableBase = 0x1000
				} else {
					patternTableBase = 0x0000
				}
				tileAddr = patternTableBase + uint16(tileIndex)*16 + uint16(pixelY)
			} else {
				tileAddr = patternTableBase + uint16(sprite.TileIndex)*16 + uint16(pixelY)
			}

			patternLo := p.readVRAM(tileAddr)
			patternHi := p.readVRAM(tileAddr + 8)
			colorIndex := getPixelColor(patternLo, patternHi, pixelX)

			if colorIndex != 0 {
				palette := sprite.Attributes & SpritePaletteMask
				paletteIndex := p.PaletteManager.GetSpriteColorIndex(palette, colorIndex)
				priority := sprite.Attributes&SpritePriority == 0
				isSprite0 := sprite.OAMIndex == 0
				return paletteIndex, priority, true, isSprite0
			}
		}
	}

	return 0, false, false, false
}

// renderPixel renders a single pixel, combining background and sprites, and
// writes the resulting 6-bit master-palette index into the framebuffer.
func (p *PPU) renderPixel() {
	if p.Scanline < 0 || p.Scanline >= 240 || p.Cycle < 0 || p.Cycle >= 256 {
		return
	}

	x := p.Cycle
	y := p.Scanline
	index := y*256 + x
	if index < 0 || index >= len(p.FrameBuffer) {
		return
	}

	renderingEnabled := (p.PPUMASK & (PPUMASKBGShow | PPUMASKSpriteShow)) != 0
	if !renderingEnabled {
		p.FrameBuffer[index] = p.PaletteManager.GetBackgroundColorIndex(0, 0)
		return
	}

	bgIndex, bgOpaque := p.renderBackgroundPixel(x, y)

	if p.Cycle == 0 {
		p.currentSprites = p.evaluateSprites(p.Scanline)
	}

	if len(p.currentSprites) == 0 {
		p.FrameBuffer[index] = bgIndex
		return
	}

	spriteIndex, spriteInFront, spriteOpaque, isSprite0 := p.renderSpritePixel(x, y, p.currentSprites)

	finalIndex := bgIndex
	if spriteOpaque {
		if spriteInFront || !bgOpaque {
			finalIndex = spriteIndex
		}

		if isSprite0 && p.PPUSTATUS&PPUSTATUSSprite0Hit == 0 {
			spriteEnabled := p.PPUMASK&PPUMASKSpriteShow != 0
			bgEnabled := p.PPUMASK&PPUMASKBGShow != 0
			leftClipped := x < 8 && (p.PPUMASK&(PPUMASKSpriteLeft|PPUMASKBGLeft)) != (PPUMASKSpriteLeft|PPUMASKBGLeft)
			if bgOpaque && spriteEnabled && bgEnabled && !leftClipped && x < 255 {
				p.PPUSTATUS |= PPUSTATUSSprite0Hit
			}
		}
	}

	p.FrameBuffer[index] = finalIndex
}
