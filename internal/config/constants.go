package config

import "time"

// Base application details
const AppName = "funscripter"
const DefaultConfigFileName = "config.toml" // Main config file
const DefaultLogFileName = "funscripter.log"

// Editing defaults. These could be moved to NewDefaultConfig(), keeping here for now
const DefaultUndoDepth = 50
const DefaultFrameRate = 30.0
const DefaultErrorMs = 33 // Nearest-match margin when the clock has no frame time
const DefaultPasteErrorMs = 1
const DefaultMoveStepMs = 0 // 0 moves by one frame
const SystemClipboard = false

// Status messages
const MessageTimeout = 4 * time.Second
