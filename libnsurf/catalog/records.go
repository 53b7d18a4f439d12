package catalog

import (
	"github.com/gogo/protobuf/proto"
)

// CatalogState is the catalog header, stored under gCatalogStateKey.
type CatalogState struct {
	MajorVers    int32  `protobuf:"varint,1,opt,name=major_vers,json=majorVers,proto3" json:"major_vers,omitempty"`
	MinorVers    int32  `protobuf:"varint,2,opt,name=minor_vers,json=minorVers,proto3" json:"minor_vers,omitempty"`
	NumRuns      uint64 `protobuf:"varint,3,opt,name=num_runs,json=numRuns,proto3" json:"num_runs,omitempty"`
	NumSolutions uint64 `protobuf:"varint,4,opt,name=num_solutions,json=numSolutions,proto3" json:"num_solutions,omitempty"`
}

func (m *CatalogState) Reset()         { *m = CatalogState{} }
func (m *CatalogState) String() string { return proto.CompactTextString(m) }
func (*CatalogState) ProtoMessage()    {}

// RunRecord describes one committed enumeration run.
type RunRecord struct {
	RunID         []byte `protobuf:"bytes,1,opt,name=run_id,json=runId,proto3" json:"run_id,omitempty"`
	Triangulation string `protobuf:"bytes,2,opt,name=triangulation,proto3" json:"triangulation,omitempty"`
	Coords        int32  `protobuf:"varint,3,opt,name=coords,proto3" json:"coords,omitempty"`
	Which         int32  `protobuf:"varint,4,opt,name=which,proto3" json:"which,omitempty"`
	Algorithm     int32  `protobuf:"varint,5,opt,name=algorithm,proto3" json:"algorithm,omitempty"`
	Constraints   uint32 `protobuf:"varint,6,opt,name=constraints,proto3" json:"constraints,omitempty"`
	BanKind       int32  `protobuf:"varint,7,opt,name=ban_kind,json=banKind,proto3" json:"ban_kind,omitempty"`
	BanEdge       int32  `protobuf:"varint,8,opt,name=ban_edge,json=banEdge,proto3" json:"ban_edge,omitempty"`
	NumSolutions  uint64 `protobuf:"varint,9,opt,name=num_solutions,json=numSolutions,proto3" json:"num_solutions,omitempty"`
	StartedUnix   int64  `protobuf:"varint,10,opt,name=started_unix,json=startedUnix,proto3" json:"started_unix,omitempty"`
	DurationNanos int64  `protobuf:"varint,11,opt,name=duration_nanos,json=durationNanos,proto3" json:"duration_nanos,omitempty"`
	Outcome       string `protobuf:"bytes,12,opt,name=outcome,proto3" json:"outcome,omitempty"`
}

func (m *RunRecord) Reset()         { *m = RunRecord{} }
func (m *RunRecord) String() string { return proto.CompactTextString(m) }
func (*RunRecord) ProtoMessage()    {}

// SolutionRecord is one solution of a run.  Entries are base-10 so that coordinates of
// any size survive a round trip.
type SolutionRecord struct {
	Index        uint64   `protobuf:"varint,1,opt,name=index,proto3" json:"index,omitempty"`
	Coords       int32    `protobuf:"varint,2,opt,name=coords,proto3" json:"coords,omitempty"`
	AlmostNormal bool     `protobuf:"varint,3,opt,name=almost_normal,json=almostNormal,proto3" json:"almost_normal,omitempty"`
	Entries      []string `protobuf:"bytes,4,rep,name=entries,proto3" json:"entries,omitempty"`
	ColumnPerm   []int32  `protobuf:"varint,5,rep,packed,name=column_perm,json=columnPerm,proto3" json:"column_perm,omitempty"`
}

func (m *SolutionRecord) Reset()         { *m = SolutionRecord{} }
func (m *SolutionRecord) String() string { return proto.CompactTextString(m) }
func (*SolutionRecord) ProtoMessage()    {}
