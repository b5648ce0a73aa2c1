package gather

import "github.com/signadot/gatherconv/ir"

// Summary holds transfer totals over all converted servers.
type Summary struct {
	FilesDownloaded int64
	BytesDownloaded int64
	FilesUploaded   int64
	BytesUploaded   int64
}

func Summarize(servers []*Server) *Summary {
	sum := &Summary{}
	for _, s := range servers {
		sum.FilesDownloaded += counter(s.Counters, "downloader.files_downloaded")
		sum.BytesDownloaded += counter(s.Counters, "downloader.bytes_downloaded")
		sum.FilesUploaded += counter(s.Counters, "uploader.files_uploaded")
		sum.BytesUploaded += counter(s.Counters, "uploader.bytes_uploaded")
	}
	return sum
}

// counter is 0 for absent and non integer counters.
func counter(counters *ir.Node, name string) int64 {
	v := ir.Get(counters, name)
	if v == nil || v.Int64 == nil {
		return 0
	}
	return *v.Int64
}

func (s *Summary) ToIR() *ir.Node {
	return ir.FromKeyVals([]ir.KeyVal{
		{Key: "files_downloaded", Val: ir.FromInt(s.FilesDownloaded)},
		{Key: "bytes_downloaded", Val: ir.FromInt(s.BytesDownloaded)},
		{Key: "files_uploaded", Val: ir.FromInt(s.FilesUploaded)},
		{Key: "bytes_uploaded", Val: ir.FromInt(s.BytesUploaded)},
	})
}
