package container

import (
	"io"
	"os"

	"github.com/nareix/joy4/av"
	"github.com/nareix/joy4/codec/aacparser"
	"github.com/nareix/joy4/codec/h264parser"
	"github.com/nareix/joy4/format/mp4/mp4io"
	"golang.org/x/xerrors"

	"github.com/lanikai/alohaplayer/internal/logging"
)

var log = logging.DefaultLogger.WithTag("container")

var (
	ErrNoMovie       = xerrors.New("container: no moov atom")
	ErrShortRead     = xerrors.New("container: short sample read")
	ErrSampleTooLong = xerrors.New("container: sample larger than buffer")
)

// Source is the random-access byte source a file is parsed from.
type Source interface {
	io.ReadSeeker
	io.ReaderAt
}

// File is a parsed MP4 file: its tracks and sample tables, and the byte
// source samples are read from.
type File struct {
	Tracks []*Track

	r      io.ReaderAt
	closer io.Closer
}

// OpenFile opens and parses the MP4 file at path.
func OpenFile(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, xerrors.Errorf("container: %w", err)
	}
	file, err := Open(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	file.closer = f
	return file, nil
}

// Open parses the MP4 atoms in src.
func Open(src Source) (*File, error) {
	atoms, err := mp4io.ReadFileAtoms(src)
	if err != nil {
		return nil, xerrors.Errorf("container: reading atoms: %w", err)
	}

	var movie *mp4io.Movie
	for _, atom := range atoms {
		if m, ok := atom.(*mp4io.Movie); ok {
			movie = m
			break
		}
	}
	if movie == nil {
		return nil, ErrNoMovie
	}

	file := &File{r: src}
	for i, ta := range movie.Tracks {
		t, err := trackFromAtom(ta)
		if err != nil {
			log.Warn("Skipping track %d: %v", i, err)
			continue
		}
		file.Tracks = append(file.Tracks, t)
	}
	return file, nil
}

// NewFile assembles a File from tracks built elsewhere, reading samples from r.
func NewFile(r io.ReaderAt, tracks ...*Track) *File {
	return &File{Tracks: tracks, r: r}
}

// VideoTrack returns the first H.264 track, or nil.
func (f *File) VideoTrack() *Track {
	return f.find(KindVideo, av.H264)
}

// AudioTrack returns the first AAC track, or nil.
func (f *File) AudioTrack() *Track {
	return f.find(KindAudio, av.AAC)
}

func (f *File) find(kind Kind, codec av.CodecType) *Track {
	for _, t := range f.Tracks {
		if t.Kind == kind && t.Codec == codec {
			return t
		}
	}
	return nil
}

// ReadSample reads sample i of track t into dst and returns the filled
// prefix of dst.
func (f *File) ReadSample(t *Track, i int, dst []byte) ([]byte, error) {
	s := t.Samples[i]
	if s.Size < 0 || s.Size > len(dst) {
		return nil, ErrSampleTooLong
	}
	n, err := f.r.ReadAt(dst[:s.Size], s.Offset)
	if n == s.Size {
		return dst[:n], nil
	}
	if err == nil || err == io.EOF {
		err = ErrShortRead
	}
	return nil, xerrors.Errorf("container: sample %d at offset %d: %w", i, s.Offset, err)
}

func (f *File) Close() error {
	if f.closer == nil {
		return nil
	}
	return f.closer.Close()
}

func trackFromAtom(ta *mp4io.Track) (*Track, error) {
	if ta.Media == nil || ta.Media.Header == nil || ta.Media.Info == nil || ta.Media.Info.Sample == nil {
		return nil, xerrors.New("incomplete media atoms")
	}
	stbl := ta.Media.Info.Sample

	t := &Track{
		TimeScale: int(ta.Media.Header.TimeScale),
	}
	if ta.Header != nil {
		t.ID = int(ta.Header.TrackId)
	}

	if stbl.SampleDesc != nil {
		switch {
		case stbl.SampleDesc.AVC1Desc != nil:
			if err := t.setVideo(ta, stbl.SampleDesc.AVC1Desc); err != nil {
				return nil, err
			}
		case stbl.SampleDesc.MP4ADesc != nil:
			t.setAudio(ta, stbl.SampleDesc.MP4ADesc)
		}
	}

	st, err := tablesFromAtom(stbl)
	if err != nil {
		return nil, err
	}
	if t.Samples, err = st.samples(); err != nil {
		return nil, err
	}
	if stbl.SyncSample != nil {
		t.SyncSamples = stbl.SyncSample.Entries
	}
	return t, nil
}

func (t *Track) setVideo(ta *mp4io.Track, desc *mp4io.AVC1Desc) error {
	t.Kind = KindVideo
	t.Codec = av.H264
	t.Width = int(desc.Width)
	t.Height = int(desc.Height)

	conf := ta.GetAVC1Conf()
	if conf == nil {
		return xerrors.New("avc1 track without avcC")
	}
	t.Config = conf.Data

	var rec h264parser.AVCDecoderConfRecord
	if _, err := rec.Unmarshal(conf.Data); err != nil {
		return xerrors.Errorf("avcC: %w", err)
	}
	t.SPS = rec.SPS
	t.PPS = rec.PPS
	t.LengthSize = int(rec.LengthSizeMinusOne&3) + 1

	if (t.Width == 0 || t.Height == 0) && len(t.SPS) > 0 {
		if info, err := h264parser.ParseSPS(t.SPS[0]); err == nil {
			t.Width, t.Height = int(info.Width), int(info.Height)
		}
	}
	return nil
}

func (t *Track) setAudio(ta *mp4io.Track, desc *mp4io.MP4ADesc) {
	t.Kind = KindAudio
	t.Codec = av.AAC
	t.SampleRate = int(desc.SampleRate)
	t.Channels = int(desc.NumberOfChannels)

	if esds := ta.GetElemStreamDesc(); esds != nil {
		t.Config = esds.DecConfig
	}
	t.applyAudioConfig()
}

// applyAudioConfig fills in a missing sample rate or channel count from the
// AudioSpecificConfig.
func (t *Track) applyAudioConfig() {
	if len(t.Config) == 0 || (t.SampleRate > 0 && t.Channels > 0) {
		return
	}
	cfg, err := aacparser.ParseMPEG4AudioConfigBytes(t.Config)
	if err != nil {
		log.Warn("Unparseable AudioSpecificConfig: %v", err)
		return
	}
	cfg.Complete()
	if t.SampleRate <= 0 {
		t.SampleRate = cfg.SampleRate
	}
	if t.Channels <= 0 {
		t.Channels = cfg.ChannelLayout.Count()
	}
}

func tablesFromAtom(stbl *mp4io.SampleTable) (*sampleTables, error) {
	if stbl.SampleSize == nil || stbl.ChunkOffset == nil || stbl.SampleToChunk == nil || stbl.TimeToSample == nil {
		return nil, xerrors.New("incomplete sample table")
	}

	st := &sampleTables{
		constantSize: stbl.SampleSize.SampleSize,
		sizes:        stbl.SampleSize.Entries,
	}
	for _, off := range stbl.ChunkOffset.Entries {
		st.chunkOffsets = append(st.chunkOffsets, int64(off))
	}
	for _, e := range stbl.SampleToChunk.Entries {
		st.chunks = append(st.chunks, chunkRun{firstChunk: e.FirstChunk, samplesPerChunk: e.SamplesPerChunk})
	}
	for _, e := range stbl.TimeToSample.Entries {
		st.times = append(st.times, timeRun{count: e.Count, duration: e.Duration})
	}
	return st, nil
}
