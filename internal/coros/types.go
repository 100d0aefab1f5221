package coros

import "strconv"

// SportType is the vendor's numeric activity classification.
// The set of known codes comes from the Training Hub API; codes the
// API reference doesn't document (trail run, track run, gravel bike,
// cross-country ski, mountain climb) are still missing.
type SportType int

const (
	SportOutdoorRun   SportType = 100
	SportIndoorRun    SportType = 101
	SportHike         SportType = 104
	SportRoadBike     SportType = 200
	SportIndoorBike   SportType = 201
	SportMountainBike SportType = 204
	SportGymCardio    SportType = 400
	SportSki          SportType = 500
	SportSnowboard    SportType = 501
	SportSkiTouring   SportType = 503
	SportIndoorClimb  SportType = 800
	SportBouldering   SportType = 801
	SportOutdoorClimb SportType = 802
	SportWalk         SportType = 900
	SportJumpRope     SportType = 901
	SportElliptical   SportType = 903
	SportYoga         SportType = 904
	SportMultisport   SportType = 10001
)

var sportNames = map[SportType]string{
	SportOutdoorRun:   "Outdoor Run",
	SportIndoorRun:    "Indoor Run",
	SportHike:         "Hike",
	SportRoadBike:     "Road Bike",
	SportIndoorBike:   "Indoor Bike",
	SportMountainBike: "Mountain Bike",
	SportGymCardio:    "Gym Cardio",
	SportSki:          "Ski",
	SportSnowboard:    "Snowboard",
	SportSkiTouring:   "Ski Touring",
	SportIndoorClimb:  "Indoor Climb",
	SportBouldering:   "Bouldering",
	SportOutdoorClimb: "Outdoor Climb",
	SportWalk:         "Walk",
	SportJumpRope:     "Jump Rope",
	SportElliptical:   "Elliptical",
	SportYoga:         "Yoga",
	SportMultisport:   "Multisport",
}

// String returns a human-readable name, or the raw code for unknown types.
func (s SportType) String() string {
	if name, ok := sportNames[s]; ok {
		return name
	}
	return "Sport(" + strconv.Itoa(int(s)) + ")"
}

// Known reports whether the code is one the client recognizes.
func (s SportType) Known() bool {
	_, ok := sportNames[s]
	return ok
}

// positionalSports are the sport types whose recordings carry GPS
// positions, which GPX/KML exports require.
var positionalSports = map[SportType]bool{
	SportOutdoorRun:   true,
	SportHike:         true,
	SportWalk:         true,
	SportMultisport:   true,
	SportOutdoorClimb: true,
	SportBouldering:   true,
	SportSki:          true,
	SportSkiTouring:   true,
	SportSnowboard:    true,
	SportRoadBike:     true,
	SportMountainBike: true,
}

// lapSports are the sport types the API attaches lap data to. Runs and
// bike rides only; the server sometimes returns lap-shaped data for
// other sports (hikes, ski tours) but it is not meaningful there.
var lapSports = map[SportType]bool{
	SportOutdoorRun:   true,
	SportIndoorRun:    true,
	SportRoadBike:     true,
	SportIndoorBike:   true,
	SportMountainBike: true,
}

// SupportsExport reports whether the sport type can be exported in the
// given file format. Positional formats need positional recordings;
// tabular formats work for everything.
func (s SportType) SupportsExport(ft FileType) bool {
	if ft.Positional() {
		return positionalSports[s]
	}
	return true
}

// SupportsLaps reports whether lap records are meaningful for the sport.
func (s SportType) SupportsLaps() bool {
	return lapSports[s]
}

// FileType is a downloadable export format.
type FileType int

const (
	FileCSV FileType = 0
	FileGPX FileType = 1
	FileKML FileType = 2
	FileTCX FileType = 3
	FileFIT FileType = 4
)

var fileExts = map[FileType]string{
	FileCSV: "csv",
	FileGPX: "gpx",
	FileKML: "kml",
	FileTCX: "tcx",
	FileFIT: "fit",
}

// Ext returns the file extension without the dot.
func (f FileType) Ext() string {
	return fileExts[f]
}

func (f FileType) String() string {
	if ext, ok := fileExts[f]; ok {
		return ext
	}
	return "FileType(" + strconv.Itoa(int(f)) + ")"
}

// Positional reports whether the format carries GPS positions.
func (f FileType) Positional() bool {
	return f == FileGPX || f == FileKML
}

// ParseFileType maps an extension string ("csv", "gpx", ...) to its
// vendor code.
func ParseFileType(s string) (FileType, bool) {
	for ft, ext := range fileExts {
		if ext == s {
			return ft, true
		}
	}
	return 0, false
}

// LapKind distinguishes the specialized lap counters the API attaches
// to bike rides and runs.
type LapKind int

const (
	LapBikeRide LapKind = 1
	LapRunning  LapKind = 2
)
