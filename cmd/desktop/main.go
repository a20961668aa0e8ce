package main

import (
	"fmt"
	"image/color"
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font/basicfont"

	"hackvm/pkg/cpu"
	"hackvm/pkg/utils"
)

// stepsPerFrame is the emulated clock budget per 60 Hz frame (~700 kHz).
const stepsPerFrame = 12000

const hudHeight = 16

type Game struct {
	mach      *cpu.Computer
	screenImg *ebiten.Image // reused 512×256 canvas
	paused    bool
}

// specialKeys maps ebiten keys to the Hack keyboard codes that have no ASCII
// equivalent.
var specialKeys = map[ebiten.Key]uint16{
	ebiten.KeyEnter:      128,
	ebiten.KeyBackspace:  129,
	ebiten.KeyArrowLeft:  130,
	ebiten.KeyArrowUp:    131,
	ebiten.KeyArrowRight: 132,
	ebiten.KeyArrowDown:  133,
	ebiten.KeyHome:       134,
	ebiten.KeyEnd:        135,
	ebiten.KeyPageUp:     136,
	ebiten.KeyPageDown:   137,
	ebiten.KeyInsert:     138,
	ebiten.KeyDelete:     139,
	ebiten.KeyEscape:     140,
}

// currentKey reports the Hack code of a currently held key, or 0. The Hack
// keyboard register holds the live key, not a buffered stream.
func currentKey() uint16 {
	for key, code := range specialKeys {
		if ebiten.IsKeyPressed(key) {
			return code
		}
	}
	for _, r := range ebiten.AppendInputChars(nil) {
		if r >= 32 && r < 127 {
			return uint16(r)
		}
	}
	return 0
}

func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyF1) {
		g.paused = !g.paused
	}
	g.mach.SetKey(currentKey())

	if !g.paused {
		g.mach.Run(stepsPerFrame)
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	if g.screenImg == nil {
		g.screenImg = ebiten.NewImage(cpu.ScreenWidth, cpu.ScreenHeight)
	}
	g.screenImg.WritePixels(g.mach.FramebufferRGBA())
	screen.DrawImage(g.screenImg, nil)

	status := fmt.Sprintf("PC=%05d  SP=%05d  key=%03d", g.mach.PC, g.mach.RAM[0], g.mach.RAM[cpu.KeyboardAddr])
	if g.mach.Halted {
		status += "  HALTED"
	}
	if g.paused {
		status += "  PAUSED (F1)"
	}
	text.Draw(screen, status, basicfont.Face7x13, 4, cpu.ScreenHeight+12, color.White)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return cpu.ScreenWidth, cpu.ScreenHeight + hudHeight
}

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: desktop <file.vm | directory | file.asm>")
	}

	words, err := utils.LoadProgram(os.Args[1])
	if err != nil {
		log.Fatal(err)
	}

	mach := cpu.New()
	if err := mach.LoadProgram(words); err != nil {
		log.Fatal(err)
	}

	ebiten.SetWindowSize(cpu.ScreenWidth, cpu.ScreenHeight+hudHeight)
	ebiten.SetWindowTitle("Hack Machine")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(&Game{mach: mach}); err != nil {
		log.Fatal(err)
	}
}
