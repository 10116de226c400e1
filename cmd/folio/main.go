package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/ivlev/folio/internal/analyzer"
	"github.com/ivlev/folio/internal/config"
	"github.com/ivlev/folio/internal/contact"
	"github.com/ivlev/folio/internal/director"
	"github.com/ivlev/folio/internal/engine"
	"github.com/ivlev/folio/internal/preview"
	"github.com/ivlev/folio/internal/renderer"
	"github.com/ivlev/folio/internal/source"
	"github.com/ivlev/folio/internal/system"
)

var version = "dev"

func main() {
	// Увеличиваем лимит открытых файлов (для macOS/Linux)
	if _, err := system.RaiseFileLimit(2048); err != nil {
		log.Printf("[!] Не удалось увеличить лимит файлов: %v", err)
	}

	// Создаем нужные директории, если их нет
	dirs := []string{"input/sites", "input/media", "output"}
	for _, d := range dirs {
		os.MkdirAll(d, 0755)
	}

	sitePtr := flag.String("site", "", "Путь к YAML сайта (по умолчанию: самый свежий файл в input/sites/, иначе встроенный)")
	mediaPtr := flag.String("media", "input/media", "Папка с изображениями и PDF для каруселей")
	fpsPtr := flag.Int("fps", 30, "FPS")
	workersPtr := flag.Int("workers", runtime.NumCPU(), "Потоки для загрузки медиа")
	periodPtr := flag.Duration("period", 5*time.Second, "Период смены изображений карусели")
	tiltPtr := flag.Float64("tilt", 5, "Максимальный наклон карточки (градусы)")
	reducedPtr := flag.Bool("reduced-motion", false, "Без анимаций: всё сразу в конечном состоянии")
	thumbPtr := flag.Int("thumb", 320, "Ширина миниатюр (px)")
	dpiPtr := flag.Int("dpi", 72, "DPI для страниц PDF")
	detectorPtr := flag.String("detector", "contrast", "Анализ подписи: contrast, luma")
	logPtr := flag.String("log", "output/folio.log", "Файл журнала (терминал занят интерфейсом)")
	statsPtr := flag.Bool("stats", false, "Показывать FPS и счётчики")
	layoutPtr := flag.String("layout", "", "Записать раскладку страницы в YAML и выйти")
	initPtr := flag.Bool("init", false, "Записать встроенный сайт в input/sites/ и выйти")
	widthPtr := flag.Int("width", 1280, "Ширина окна для -layout (px)")
	heightPtr := flag.Int("height", 800, "Высота окна для -layout (px)")
	relayPtr := flag.String("relay", contact.DefaultRelayEndpoint, "URL сервиса отправки писем")
	servicePtr := flag.String("relay-service", "", "ID сервиса отправки")
	templatePtr := flag.String("relay-template", "", "ID шаблона письма")
	keyPtr := flag.String("relay-key", "", "Публичный ключ сервиса отправки")
	versionPtr := flag.Bool("version", false, "Версия")

	flag.Parse()

	if *versionPtr {
		fmt.Println("folio", version)
		return
	}

	if *initPtr {
		path := config.GenerateSitePath("input/sites")
		if err := config.WriteSite(config.DefaultSite(), path); err != nil {
			log.Fatalf("[-] Ошибка записи сайта: %v", err)
		}
		fmt.Printf("[+] Сайт записан: %s\n", path)
		return
	}

	cfg := &config.Config{
		SitePath:       *sitePtr,
		MediaDir:       *mediaPtr,
		FPS:            *fpsPtr,
		Workers:        *workersPtr,
		ViewportWidth:  *widthPtr,
		ViewportHeight: *heightPtr,
		RotationPeriod: *periodPtr,
		MaxTilt:        *tiltPtr,
		ReducedMotion:  *reducedPtr,
		ThumbWidth:     *thumbPtr,
		DPI:            *dpiPtr,
		Detector:       *detectorPtr,
		LogPath:        *logPtr,
		ShowStats:      *statsPtr,
		BuildVersion:   version,
		RelayEndpoint:  *relayPtr,
		RelayService:   *servicePtr,
		RelayTemplate:  *templatePtr,
		RelayKey:       *keyPtr,
	}

	site, err := loadSite(cfg)
	if err != nil {
		log.Fatalf("[-] Ошибка загрузки сайта: %v", err)
	}

	if *layoutPtr != "" {
		l, err := director.NewDirector(float64(cfg.ViewportWidth), float64(cfg.ViewportHeight)).Layout(site)
		if err != nil {
			log.Fatalf("[-] Ошибка раскладки: %v", err)
		}
		if err := director.WriteLayout(l, *layoutPtr); err != nil {
			log.Fatalf("[-] Ошибка записи раскладки: %v", err)
		}
		fmt.Printf("[+] Раскладка: %s (%.0fpx)\n", *layoutPtr, l.Height)
		return
	}

	if err := run(cfg, site); err != nil {
		log.Fatalf("[-] Ошибка: %v", err)
	}
}

func loadSite(cfg *config.Config) (*config.Site, error) {
	path := cfg.SitePath
	if path == "" {
		latest, err := config.FindLatestSite("input/sites")
		if errors.Is(err, config.ErrNoSite) {
			fmt.Println("[*] Файл сайта не найден, используется встроенный")
			return config.DefaultSite(), nil
		}
		if err != nil {
			return nil, err
		}
		path = latest
		fmt.Printf("[*] Выбран сайт: %s\n", path)
	}
	return config.ReadSite(path)
}

func run(cfg *config.Config, site *config.Site) error {
	if cfg.LogPath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.LogPath), 0755); err != nil {
			return err
		}
		f, err := os.OpenFile(cfg.LogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("open log: %w", err)
		}
		defer f.Close()
		log.SetOutput(f)
	}
	log.Printf("[*] folio %s", cfg.BuildVersion)

	budget := system.FrameBudget(cfg.FPS, cfg.Workers)
	if budget.Degraded {
		log.Printf("[!] Система загружена (load %.2f, mem %.0f%%): %d fps, %d потоков",
			budget.Load1, budget.MemUsed, budget.FPS, budget.Workers)
	}

	detector, err := analyzer.NewDetector(cfg.Detector)
	if err != nil {
		return err
	}
	if latest, err := system.FindLatestMedia(cfg.MediaDir); err != nil {
		log.Printf("[!] Нет медиа в %s, локальные карусели покажут заглушки: %v", cfg.MediaDir, err)
	} else {
		log.Printf("[*] Медиа: %s (последний файл %s)", cfg.MediaDir, filepath.Base(latest))
	}
	thumb := image.Point{X: cfg.ThumbWidth, Y: cfg.ThumbWidth * 3 / 4}
	lib := source.NewLibrary(cfg.MediaDir, cfg.DPI, thumb, nil)

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("screen init: %w", err)
	}
	defer screen.Fini()

	painter := renderer.NewPainter(screen, lib, detector, nil)
	painter.ShowStats = cfg.ShowStats
	w, h := painter.Viewport()
	cfg.ViewportWidth, cfg.ViewportHeight = int(w), int(h)

	s, err := engine.NewSite(cfg, site, engine.Options{Library: lib})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	host := preview.NewHost(screen, s, painter, preview.Options{
		FrameInterval: budget.FrameInterval(),
		Workers:       budget.Workers,
	})
	return host.Run(ctx)
}
