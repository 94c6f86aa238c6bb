// Copyright (C) 2026 The stget Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package bep

// Marshal encodes h as a protobuf message body.
func (h Header) Marshal() []byte {
	var w writer
	w.int32Field(1, int32(h.Type))
	w.int32Field(2, int32(h.Compression))
	return w.buf
}

// Unmarshal decodes a Header from a protobuf message body.
func (h *Header) Unmarshal(data []byte) error {
	r := newReader(data)
	for !r.done() {
		field, wt, err := r.tag()
		if err != nil {
			return err
		}
		switch field {
		case 1:
			v, err := r.uvarint()
			if err != nil {
				return err
			}
			h.Type = MessageType(v)
		case 2:
			v, err := r.uvarint()
			if err != nil {
				return err
			}
			h.Compression = Compression(v)
		default:
			if err := r.skip(wt); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m Hello) Marshal() []byte {
	var w writer
	w.stringField(1, m.DeviceName)
	w.stringField(2, m.ClientName)
	w.stringField(3, m.ClientVersion)
	return w.buf
}

func (m *Hello) Unmarshal(data []byte) error {
	r := newReader(data)
	for !r.done() {
		field, wt, err := r.tag()
		if err != nil {
			return err
		}
		switch field {
		case 1:
			if m.DeviceName, err = r.stringValue(); err != nil {
				return err
			}
		case 2:
			if m.ClientName, err = r.stringValue(); err != nil {
				return err
			}
		case 3:
			if m.ClientVersion, err = r.stringValue(); err != nil {
				return err
			}
		default:
			if err := r.skip(wt); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m Device) Marshal() []byte {
	var w writer
	w.bytesField(1, m.ID)
	w.int64Field(6, m.MaxSequence)
	return w.buf
}

func (m *Device) Unmarshal(data []byte) error {
	r := newReader(data)
	for !r.done() {
		field, wt, err := r.tag()
		if err != nil {
			return err
		}
		switch field {
		case 1:
			b, err := r.bytesValue()
			if err != nil {
				return err
			}
			m.ID = append([]byte(nil), b...)
		case 6:
			v, err := r.uvarint()
			if err != nil {
				return err
			}
			m.MaxSequence = int64(v)
		default:
			if err := r.skip(wt); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m Folder) Marshal() []byte {
	var w writer
	w.stringField(1, m.ID)
	w.stringField(2, m.Label)
	w.boolField(3, m.ReadOnly)
	w.boolField(4, m.IgnorePermissions)
	w.boolField(5, m.IgnoreDelete)
	w.boolField(6, m.DisableTempIndexes)
	for _, d := range m.Devices {
		w.messageField(16, d.Marshal())
	}
	return w.buf
}

func (m *Folder) Unmarshal(data []byte) error {
	r := newReader(data)
	for !r.done() {
		field, wt, err := r.tag()
		if err != nil {
			return err
		}
		switch field {
		case 1:
			if m.ID, err = r.stringValue(); err != nil {
				return err
			}
		case 2:
			if m.Label, err = r.stringValue(); err != nil {
				return err
			}
		case 3:
			v, err := r.uvarint()
			if err != nil {
				return err
			}
			m.ReadOnly = v != 0
		case 4:
			v, err := r.uvarint()
			if err != nil {
				return err
			}
			m.IgnorePermissions = v != 0
		case 5:
			v, err := r.uvarint()
			if err != nil {
				return err
			}
			m.IgnoreDelete = v != 0
		case 6:
			v, err := r.uvarint()
			if err != nil {
				return err
			}
			m.DisableTempIndexes = v != 0
		case 16:
			b, err := r.bytesValue()
			if err != nil {
				return err
			}
			var d Device
			if err := d.Unmarshal(b); err != nil {
				return err
			}
			m.Devices = append(m.Devices, &d)
		default:
			if err := r.skip(wt); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m ClusterConfig) Marshal() []byte {
	var w writer
	for _, f := range m.Folders {
		w.messageField(1, f.Marshal())
	}
	return w.buf
}

func (m *ClusterConfig) Unmarshal(data []byte) error {
	r := newReader(data)
	for !r.done() {
		field, wt, err := r.tag()
		if err != nil {
			return err
		}
		switch field {
		case 1:
			b, err := r.bytesValue()
			if err != nil {
				return err
			}
			var f Folder
			if err := f.Unmarshal(b); err != nil {
				return err
			}
			m.Folders = append(m.Folders, &f)
		default:
			if err := r.skip(wt); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m Counter) Marshal() []byte {
	var w writer
	w.uint64Field(1, m.ID)
	w.uint64Field(2, m.Value)
	return w.buf
}

func (m *Counter) Unmarshal(data []byte) error {
	r := newReader(data)
	for !r.done() {
		field, wt, err := r.tag()
		if err != nil {
			return err
		}
		switch field {
		case 1:
			v, err := r.uvarint()
			if err != nil {
				return err
			}
			m.ID = v
		case 2:
			v, err := r.uvarint()
			if err != nil {
				return err
			}
			m.Value = v
		default:
			if err := r.skip(wt); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m Vector) Marshal() []byte {
	var w writer
	for _, c := range m.Counters {
		w.messageField(1, c.Marshal())
	}
	return w.buf
}

func (m *Vector) Unmarshal(data []byte) error {
	r := newReader(data)
	for !r.done() {
		field, wt, err := r.tag()
		if err != nil {
			return err
		}
		switch field {
		case 1:
			b, err := r.bytesValue()
			if err != nil {
				return err
			}
			var c Counter
			if err := c.Unmarshal(b); err != nil {
				return err
			}
			m.Counters = append(m.Counters, c)
		default:
			if err := r.skip(wt); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m BlockInfo) Marshal() []byte {
	var w writer
	w.int64Field(1, m.Offset)
	w.int32Field(2, m.Size)
	w.bytesField(3, m.Hash)
	return w.buf
}

func (m *BlockInfo) Unmarshal(data []byte) error {
	r := newReader(data)
	for !r.done() {
		field, wt, err := r.tag()
		if err != nil {
			return err
		}
		switch field {
		case 1:
			v, err := r.uvarint()
			if err != nil {
				return err
			}
			m.Offset = int64(v)
		case 2:
			v, err := r.uvarint()
			if err != nil {
				return err
			}
			m.Size = int32(v)
		case 3:
			b, err := r.bytesValue()
			if err != nil {
				return err
			}
			m.Hash = append([]byte(nil), b...)
		default:
			if err := r.skip(wt); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m FileInfo) Marshal() []byte {
	var w writer
	w.stringField(1, m.Name)
	w.int32Field(2, int32(m.Type))
	w.int64Field(3, m.Size)
	w.boolField(6, m.Deleted)
	if m.Version != nil {
		w.messageField(9, m.Version.Marshal())
	}
	w.int64Field(10, m.Sequence)
	for _, b := range m.Blocks {
		w.messageField(16, b.Marshal())
	}
	return w.buf
}

func (m *FileInfo) Unmarshal(data []byte) error {
	r := newReader(data)
	for !r.done() {
		field, wt, err := r.tag()
		if err != nil {
			return err
		}
		switch field {
		case 1:
			if m.Name, err = r.stringValue(); err != nil {
				return err
			}
		case 2:
			v, err := r.uvarint()
			if err != nil {
				return err
			}
			m.Type = FileInfoType(v)
		case 3:
			v, err := r.uvarint()
			if err != nil {
				return err
			}
			m.Size = int64(v)
		case 6:
			v, err := r.uvarint()
			if err != nil {
				return err
			}
			m.Deleted = v != 0
		case 9:
			b, err := r.bytesValue()
			if err != nil {
				return err
			}
			var v Vector
			if err := v.Unmarshal(b); err != nil {
				return err
			}
			m.Version = &v
		case 10:
			v, err := r.uvarint()
			if err != nil {
				return err
			}
			m.Sequence = int64(v)
		case 16:
			b, err := r.bytesValue()
			if err != nil {
				return err
			}
			var bi BlockInfo
			if err := bi.Unmarshal(b); err != nil {
				return err
			}
			m.Blocks = append(m.Blocks, &bi)
		default:
			if err := r.skip(wt); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m Index) Marshal() []byte {
	var w writer
	w.stringField(1, m.Folder)
	for _, f := range m.Files {
		w.messageField(2, f.Marshal())
	}
	return w.buf
}

func (m *Index) Unmarshal(data []byte) error {
	r := newReader(data)
	for !r.done() {
		field, wt, err := r.tag()
		if err != nil {
			return err
		}
		switch field {
		case 1:
			if m.Folder, err = r.stringValue(); err != nil {
				return err
			}
		case 2:
			b, err := r.bytesValue()
			if err != nil {
				return err
			}
			var fi FileInfo
			if err := fi.Unmarshal(b); err != nil {
				return err
			}
			m.Files = append(m.Files, &fi)
		default:
			if err := r.skip(wt); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m IndexUpdate) Marshal() []byte {
	idx := Index(m)
	return idx.Marshal()
}

func (m *IndexUpdate) Unmarshal(data []byte) error {
	var idx Index
	if err := idx.Unmarshal(data); err != nil {
		return err
	}
	m.Folder = idx.Folder
	m.Files = idx.Files
	return nil
}

func (m Request) Marshal() []byte {
	var w writer
	w.int32Field(1, m.ID)
	w.stringField(2, m.Folder)
	w.stringField(3, m.Name)
	w.int64Field(4, m.Offset)
	w.int32Field(5, m.Size)
	w.bytesField(6, m.Hash)
	w.boolField(7, m.FromTemporary)
	return w.buf
}

func (m *Request) Unmarshal(data []byte) error {
	r := newReader(data)
	for !r.done() {
		field, wt, err := r.tag()
		if err != nil {
			return err
		}
		switch field {
		case 1:
			v, err := r.uvarint()
			if err != nil {
				return err
			}
			m.ID = int32(v)
		case 2:
			if m.Folder, err = r.stringValue(); err != nil {
				return err
			}
		case 3:
			if m.Name, err = r.stringValue(); err != nil {
				return err
			}
		case 4:
			v, err := r.uvarint()
			if err != nil {
				return err
			}
			m.Offset = int64(v)
		case 5:
			v, err := r.uvarint()
			if err != nil {
				return err
			}
			m.Size = int32(v)
		case 6:
			b, err := r.bytesValue()
			if err != nil {
				return err
			}
			m.Hash = append([]byte(nil), b...)
		case 7:
			v, err := r.uvarint()
			if err != nil {
				return err
			}
			m.FromTemporary = v != 0
		default:
			if err := r.skip(wt); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m Response) Marshal() []byte {
	var w writer
	w.int32Field(1, m.ID)
	w.bytesField(2, m.Data)
	w.int32Field(3, int32(m.Code))
	return w.buf
}

func (m *Response) Unmarshal(data []byte) error {
	r := newReader(data)
	for !r.done() {
		field, wt, err := r.tag()
		if err != nil {
			return err
		}
		switch field {
		case 1:
			v, err := r.uvarint()
			if err != nil {
				return err
			}
			m.ID = int32(v)
		case 2:
			b, err := r.bytesValue()
			if err != nil {
				return err
			}
			m.Data = append([]byte(nil), b...)
		case 3:
			v, err := r.uvarint()
			if err != nil {
				return err
			}
			m.Code = ErrorCode(v)
		default:
			if err := r.skip(wt); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m Ping) Marshal() []byte { return nil }

func (m *Ping) Unmarshal(data []byte) error {
	r := newReader(data)
	for !r.done() {
		_, wt, err := r.tag()
		if err != nil {
			return err
		}
		if err := r.skip(wt); err != nil {
			return err
		}
	}
	return nil
}

func (m Close) Marshal() []byte {
	var w writer
	w.stringField(1, m.Reason)
	return w.buf
}

func (m *Close) Unmarshal(data []byte) error {
	r := newReader(data)
	for !r.done() {
		field, wt, err := r.tag()
		if err != nil {
			return err
		}
		switch field {
		case 1:
			if m.Reason, err = r.stringValue(); err != nil {
				return err
			}
		default:
			if err := r.skip(wt); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m DownloadProgress) Marshal() []byte {
	var w writer
	w.stringField(1, m.Folder)
	return w.buf
}

func (m *DownloadProgress) Unmarshal(data []byte) error {
	r := newReader(data)
	for !r.done() {
		field, wt, err := r.tag()
		if err != nil {
			return err
		}
		switch field {
		case 1:
			if m.Folder, err = r.stringValue(); err != nil {
				return err
			}
		default:
			if err := r.skip(wt); err != nil {
				return err
			}
		}
	}
	return nil
}
