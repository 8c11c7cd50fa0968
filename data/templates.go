package data

import (
	"embed"
	"encoding/json"
	"io/fs"
	"os"
	"path"
	"sync"
	"unicode/utf8"

	"dungeon-spawn/errors"
)

//go:embed templates/*.json
var builtinTemplates embed.FS

var (
	defaultTemplatesOnce sync.Once
	defaultTemplates     *TemplateManager
)

// RaceTemplate is the stat block of a playable race
type RaceTemplate struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Health         int     `json:"health"`
	Attack         int     `json:"attack"`
	Defense        int     `json:"defense"`
	GoldMultiplier float64 `json:"goldMultiplier,omitempty"` // zero means no multiplier component
	AllPositive    bool    `json:"allPositive,omitempty"`
}

// EnemyTemplate is the stat block of an enemy type
type EnemyTemplate struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Glyph       string `json:"glyph"`
	Health      int    `json:"health"`
	Attack      int    `json:"attack"`
	Defense     int    `json:"defense"`
	Gold        int    `json:"gold"`
	Hostile     bool   `json:"hostile"`
	SpawnWeight int    `json:"spawnWeight"` // Relative chance in the random wave; 0 = never rolled
	NoCompass   bool   `json:"noCompass,omitempty"`
	Guardian    bool   `json:"guardian,omitempty"` // Spawned next to guarded items
}

// ItemTemplate describes a non-potion, non-treasure item
type ItemTemplate struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Glyph       string `json:"glyph"`
	CanPickup   bool   `json:"canPickup,omitempty"`
	Compass     bool   `json:"compass,omitempty"`
	BarrierSuit bool   `json:"barrierSuit,omitempty"`
	Stairs      bool   `json:"stairs,omitempty"`
	Guarded     bool   `json:"guarded,omitempty"`
}

// PotionTemplate maps a potion code to its template tile
type PotionTemplate struct {
	Code string `json:"code"`
	Name string `json:"name"`
	Tile string `json:"tile"`
}

// TreasureTemplate describes a treasure tier
type TreasureTemplate struct {
	Value       int    `json:"value"`
	Name        string `json:"name"`
	Tile        string `json:"tile"`
	SpawnWeight int    `json:"spawnWeight"`
	Hoard       bool   `json:"hoard,omitempty"`
}

// templateFile is the on-disk shape; any section may be omitted
type templateFile struct {
	Races     []RaceTemplate     `json:"races"`
	Enemies   []EnemyTemplate    `json:"enemies"`
	Items     []ItemTemplate     `json:"items"`
	Potions   []PotionTemplate   `json:"potions"`
	Treasures []TreasureTemplate `json:"treasures"`
}

// TemplateManager holds every stat table. Enemies, potions and treasures keep
// file order because weighted rolls walk them in that order.
type TemplateManager struct {
	Races     map[string]*RaceTemplate
	Enemies   map[string]*EnemyTemplate
	Items     map[string]*ItemTemplate
	potions   []*PotionTemplate
	treasures []*TreasureTemplate
	enemyIDs  []string
}

// NewTemplateManager creates an empty template manager
func NewTemplateManager() *TemplateManager {
	return &TemplateManager{
		Races:   make(map[string]*RaceTemplate),
		Enemies: make(map[string]*EnemyTemplate),
		Items:   make(map[string]*ItemTemplate),
	}
}

// DefaultTemplates returns the built-in stat tables
func DefaultTemplates() *TemplateManager {
	defaultTemplatesOnce.Do(func() {
		m := NewTemplateManager()
		if err := m.LoadTemplatesFromFS(builtinTemplates, "templates"); err != nil {
			panic("embedded templates are invalid: " + err.Error())
		}
		defaultTemplates = m
	})
	return defaultTemplates
}

// LoadTemplatesFromDirectory loads all JSON template files from a directory
func (m *TemplateManager) LoadTemplatesFromDirectory(dirPath string) error {
	return m.LoadTemplatesFromFS(os.DirFS(dirPath), ".")
}

// LoadTemplatesFromFS loads every .json file in dir, in name order, then
// validates the combined tables
func (m *TemplateManager) LoadTemplatesFromFS(fsys fs.FS, dir string) error {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return errors.Wrap(err, "failed to read template directory")
	}

	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ".json" {
			continue
		}
		if err := m.LoadTemplateFile(fsys, path.Join(dir, entry.Name())); err != nil {
			return errors.Wrapf(err, "failed to load template from %s", entry.Name())
		}
	}

	return m.Validate()
}

// LoadTemplateFile loads a single JSON template file
func (m *TemplateManager) LoadTemplateFile(fsys fs.FS, filePath string) error {
	raw, err := fs.ReadFile(fsys, filePath)
	if err != nil {
		return err
	}

	var file templateFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return errors.WrapWithCode(err, errors.CodeInvalidArgument, "malformed template json")
	}

	for i := range file.Races {
		race := file.Races[i]
		if err := ValidateRaceTemplate(&race); err != nil {
			return err
		}
		m.Races[race.ID] = &race
	}
	for i := range file.Enemies {
		enemy := file.Enemies[i]
		if err := ValidateEnemyTemplate(&enemy); err != nil {
			return err
		}
		if _, exists := m.Enemies[enemy.ID]; !exists {
			m.enemyIDs = append(m.enemyIDs, enemy.ID)
		}
		m.Enemies[enemy.ID] = &enemy
	}
	for i := range file.Items {
		item := file.Items[i]
		if err := ValidateItemTemplate(&item); err != nil {
			return err
		}
		m.Items[item.ID] = &item
	}
	for i := range file.Potions {
		potion := file.Potions[i]
		if potion.Code == "" {
			return errors.InvalidArgument("potion template missing code")
		}
		m.potions = append(m.potions, &potion)
	}
	for i := range file.Treasures {
		treasure := file.Treasures[i]
		if treasure.Value <= 0 {
			return errors.InvalidArgumentf("treasure template '%s' needs a positive value", treasure.Name)
		}
		m.treasures = append(m.treasures, &treasure)
	}
	return nil
}

// Validate checks that the tables can populate a floor
func (m *TemplateManager) Validate() error {
	if len(m.Races) == 0 {
		return errors.InvalidArgument("no race templates loaded")
	}
	if len(m.potions) == 0 {
		return errors.InvalidArgument("no potion templates loaded")
	}
	if m.Guardian() == nil {
		return errors.InvalidArgument("no guardian enemy template loaded")
	}
	if _, ok := m.Items[ItemStairs]; !ok {
		return errors.InvalidArgumentf("no %s item template loaded", ItemStairs)
	}

	weighted := 0
	for _, enemy := range m.EnemyList() {
		weighted += enemy.SpawnWeight
	}
	if weighted == 0 {
		return errors.InvalidArgument("no enemy template has a spawn weight")
	}

	weighted = 0
	for _, treasure := range m.treasures {
		weighted += treasure.SpawnWeight
	}
	if weighted == 0 {
		return errors.InvalidArgument("no treasure template has a spawn weight")
	}
	return nil
}

// ValidateRaceTemplate ensures that a race template has all required fields
func ValidateRaceTemplate(template *RaceTemplate) error {
	if template.ID == "" {
		return errors.InvalidArgument("race template missing ID")
	}
	if template.Health <= 0 {
		return errors.InvalidArgumentf("race template '%s' needs positive health", template.ID)
	}
	return nil
}

// ValidateEnemyTemplate ensures that an enemy template has all required fields
func ValidateEnemyTemplate(template *EnemyTemplate) error {
	if template.ID == "" {
		return errors.InvalidArgument("enemy template missing ID")
	}
	if utf8.RuneCountInString(template.Glyph) != 1 {
		return errors.InvalidArgumentf("enemy template '%s' needs a single-character glyph", template.ID)
	}
	if template.SpawnWeight < 0 {
		return errors.InvalidArgumentf("enemy template '%s' has a negative spawn weight", template.ID)
	}
	return nil
}

// ValidateItemTemplate ensures that an item template has all required fields
func ValidateItemTemplate(template *ItemTemplate) error {
	if template.ID == "" {
		return errors.InvalidArgument("item template missing ID")
	}
	if utf8.RuneCountInString(template.Glyph) != 1 {
		return errors.InvalidArgumentf("item template '%s' needs a single-character glyph", template.ID)
	}
	return nil
}

// GetRace returns a race template by ID
func (m *TemplateManager) GetRace(id string) (*RaceTemplate, bool) {
	template, ok := m.Races[id]
	return template, ok
}

// GetEnemy returns an enemy template by ID
func (m *TemplateManager) GetEnemy(id string) (*EnemyTemplate, bool) {
	template, ok := m.Enemies[id]
	return template, ok
}

// GetItem returns an item template by ID
func (m *TemplateManager) GetItem(id string) (*ItemTemplate, bool) {
	template, ok := m.Items[id]
	return template, ok
}

// EnemyList returns enemy templates in load order
func (m *TemplateManager) EnemyList() []*EnemyTemplate {
	list := make([]*EnemyTemplate, 0, len(m.enemyIDs))
	for _, id := range m.enemyIDs {
		list = append(list, m.Enemies[id])
	}
	return list
}

// Potions returns potion templates in load order
func (m *TemplateManager) Potions() []*PotionTemplate {
	return m.potions
}

// Treasures returns treasure templates in load order
func (m *TemplateManager) Treasures() []*TreasureTemplate {
	return m.treasures
}

// Guardian returns the enemy spawned next to guarded items
func (m *TemplateManager) Guardian() *EnemyTemplate {
	for _, enemy := range m.EnemyList() {
		if enemy.Guardian {
			return enemy
		}
	}
	return nil
}

// GetTreasure returns the tier with the given value
func (m *TemplateManager) GetTreasure(value int) (*TreasureTemplate, bool) {
	for _, treasure := range m.treasures {
		if treasure.Value == value {
			return treasure, true
		}
	}
	return nil, false
}

// EnemyByGlyph finds the enemy drawn with glyph
func (m *TemplateManager) EnemyByGlyph(glyph rune) (*EnemyTemplate, bool) {
	for _, enemy := range m.EnemyList() {
		if enemy.Rune() == glyph {
			return enemy, true
		}
	}
	return nil, false
}

// ItemByGlyph finds the item drawn with glyph
func (m *TemplateManager) ItemByGlyph(glyph rune) (*ItemTemplate, bool) {
	for _, item := range m.Items {
		if item.Rune() == glyph {
			return item, true
		}
	}
	return nil, false
}

// PotionByTile finds the potion written as tile in floor files
func (m *TemplateManager) PotionByTile(tile rune) (*PotionTemplate, bool) {
	for _, potion := range m.potions {
		if firstRune(potion.Tile) == tile {
			return potion, true
		}
	}
	return nil, false
}

// TreasureByTile finds the treasure tier written as tile in floor files
func (m *TemplateManager) TreasureByTile(tile rune) (*TreasureTemplate, bool) {
	for _, treasure := range m.treasures {
		if firstRune(treasure.Tile) == tile {
			return treasure, true
		}
	}
	return nil, false
}

// Rune returns the enemy glyph
func (t *EnemyTemplate) Rune() rune { return firstRune(t.Glyph) }

// Rune returns the item glyph
func (t *ItemTemplate) Rune() rune { return firstRune(t.Glyph) }

func firstRune(s string) rune {
	r, _ := utf8.DecodeRuneInString(s)
	return r
}
