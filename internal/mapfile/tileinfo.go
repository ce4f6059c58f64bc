package mapfile

// Tileset bitmap names used by the built-in terrain textures
const (
	TilesetMine    = "well0000"
	TilesetRock    = "well0001"
	TilesetDirt    = "well0002"
	TilesetMicrobe = "well0003"
	TilesetLava    = "well0004"
	TilesetGround  = "well0005"
	TilesetTube    = "well0012"
)

// TileInfoFor maps a cell type onto its default tileset texture
func TileInfoFor(t CellType) TileInfo {
	v := int(t.Variant)
	switch t.Kind {
	case Dirt:
		return TileInfo{TilesetName: TilesetDirt, TileIndex: v % 3}
	case Lava:
		return TileInfo{TilesetName: TilesetLava, TileIndex: v % 3}
	case Microbe:
		return TileInfo{TilesetName: TilesetMicrobe, TileIndex: v % 3}
	case Mine:
		if t.Depleted() {
			return TileInfo{TilesetName: TilesetMine, TileIndex: 1}
		}
		return TileInfo{TilesetName: TilesetMine, TileIndex: 0}
	case Rock:
		return TileInfo{TilesetName: TilesetRock, TileIndex: v % 3}
	case Tube:
		return TileInfo{TilesetName: TilesetTube, TileIndex: v % 4}
	case Wall:
		// walls share the ground bitmap, offset past the plain ground tile
		return TileInfo{TilesetName: TilesetGround, TileIndex: v%3 + 1}
	default:
		return TileInfo{TilesetName: TilesetGround, TileIndex: 0}
	}
}
