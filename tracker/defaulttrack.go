package tracker

const defaultTrack = `[CONFIG]
BPM: 120
Grid: 4
Time: 4/4
Scale: C major

[INSTRUMENTS]
Piano: grand_piano
Bass: finger_bass

[PATTERN: Main]
Duration: 16
Bass  | 0 4 1, ; 4 4 4, ; 8 4 5, ; 12 4 1,
Piano | 0 4 1+3+5 ; 4 4 4+6+1' ; 8 4 5+7+2' ; 12 4 1+3+5

[PLAYLIST]
Main
`
