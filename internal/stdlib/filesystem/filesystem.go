// Package filesystem implements the std.filesystem standard-library
// object: working-directory and path queries, directory listing and
// manipulation, and buffered file I/O, grounded on filesystem.cpp.
package filesystem

import (
	"io"
	"os"
	"path/filepath"
	"sort"

	"golang.org/x/sys/unix"

	"asteria/internal/binding"
	"asteria/internal/eval"
	"asteria/internal/failure"
	"asteria/internal/global"
	"asteria/internal/reference"
	"asteria/internal/value"
)

// Register builds the std.filesystem object.
func Register() *value.Object {
	obj := value.NewObject()
	obj.Set("get_working_directory", native("get_working_directory", getWorkingDirectory))
	obj.Set("get_real_path", native("get_real_path", getRealPath))
	obj.Set("get_information", native("get_information", getInformation))
	obj.Set("move_from", native("move_from", moveFrom))
	obj.Set("remove_recursive", native("remove_recursive", removeRecursive))
	obj.Set("dir_list", native("dir_list", dirList))
	obj.Set("dir_create", native("dir_create", dirCreate))
	obj.Set("dir_remove", native("dir_remove", dirRemove))
	obj.Set("file_read", native("file_read", fileRead))
	obj.Set("file_stream", native("file_stream", fileStream))
	obj.Set("file_write", native("file_write", fileWrite))
	obj.Set("file_append", native("file_append", fileAppend))
	obj.Set("file_copy_from", native("file_copy_from", fileCopyFrom))
	obj.Set("file_remove", native("file_remove", fileRemove))
	return obj
}

func native(name string, fn value.NativeFn) value.Value {
	return value.FuncVal(&value.Function{Name: name, Native: fn})
}

func requireString(args []value.Value, i int, name string) (string, *failure.Failure) {
	if i >= len(args) || args[i].Kind() != value.String {
		return "", failure.New(failure.Argument, "%s requires a string argument at position %d", name, i)
	}
	return args[i].String_(), nil
}

func optionalInt(args []value.Value, i int, def int64) int64 {
	if i >= len(args) || args[i].Kind() != value.Integer {
		return def
	}
	return args[i].Int()
}

// readPath reads a single required path-string argument via an
// Argument_Reader-style pass, so a wrong-arity or wrong-kind call reports
// the attempted signature the same way every other overload mismatch does.
func readPath(name string, args []value.Value) (string, *failure.Failure) {
	r := binding.NewReader(name, args)
	r.StartOverload()
	path, ok := r.Required(value.String)
	if ok && r.EndOverload() {
		return path.String_(), nil
	}
	return "", r.ThrowNoMatchingFunctionCall()
}

// readPathOffsetLimit reads `(path)`, `(path, offset)`, or
// `(path, offset, limit)`, returning -1 for an absent limit.
func readPathOffsetLimit(name string, args []value.Value) (string, int64, int64, *failure.Failure) {
	r := binding.NewReader(name, args)
	r.StartOverload()
	path, ok := r.Required(value.String)
	offset, okOffset := r.Optional(value.Integer)
	limit, okLimit := r.Optional(value.Integer)
	if ok && okOffset && okLimit && r.EndOverload() {
		lim := int64(-1)
		if limit.Kind() == value.Integer {
			lim = limit.Int()
		}
		return path.String_(), offset.Int(), lim, nil
	}
	return "", 0, 0, r.ThrowNoMatchingFunctionCall()
}

func getWorkingDirectory(_ interface{}, _ value.Value, _ []value.Value) (value.Value, *failure.Failure) {
	wd, err := os.Getwd()
	if err != nil {
		return value.Value{}, global.RaiseHostError(failure.Resource, err)
	}
	return value.Str(wd), nil
}

func getRealPath(_ interface{}, _ value.Value, args []value.Value) (value.Value, *failure.Failure) {
	path, ferr := readPath("get_real_path", args)
	if ferr != nil {
		return value.Value{}, ferr
	}
	real, err := filepath.Abs(path)
	if err != nil {
		return value.Null_, nil
	}
	resolved, err := filepath.EvalSymlinks(real)
	if err != nil {
		return value.Null_, nil
	}
	return value.Str(resolved), nil
}

// getInformation exposes the raw stat_t fields a direct ::stat() call
// surfaces, beyond what os.FileInfo carries: device,
// inode, and mode bits, read through golang.org/x/sys/unix on Linux.
func getInformation(_ interface{}, _ value.Value, args []value.Value) (value.Value, *failure.Failure) {
	path, ferr := readPath("get_information", args)
	if ferr != nil {
		return value.Value{}, ferr
	}
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return value.Null_, nil
	}
	info := value.NewObject()
	info.Set("device", value.Int(int64(st.Dev)))
	info.Set("inode", value.Int(int64(st.Ino)))
	info.Set("mode", value.Int(int64(st.Mode)))
	info.Set("hard_link_count", value.Int(int64(st.Nlink)))
	info.Set("size", value.Int(st.Size))
	info.Set("number_of_blocks", value.Int(st.Blocks))
	info.Set("is_directory", value.Bool(st.Mode&unix.S_IFMT == unix.S_IFDIR))
	info.Set("is_symbolic_link", value.Bool(st.Mode&unix.S_IFMT == unix.S_IFLNK))
	info.Set("time_accessed", value.Int(st.Atim.Sec*1000+st.Atim.Nsec/1_000_000))
	info.Set("time_modified", value.Int(st.Mtim.Sec*1000+st.Mtim.Nsec/1_000_000))
	return value.ObjectVal(info), nil
}

func moveFrom(_ interface{}, _ value.Value, args []value.Value) (value.Value, *failure.Failure) {
	newPath, ferr := requireString(args, 0, "move_from")
	if ferr != nil {
		return value.Value{}, ferr
	}
	oldPath, ferr := requireString(args, 1, "move_from")
	if ferr != nil {
		return value.Value{}, ferr
	}
	if err := os.Rename(oldPath, newPath); err != nil {
		return value.Value{}, global.RaiseHostError(failure.Resource, err)
	}
	return value.Null_, nil
}

func removeRecursive(_ interface{}, _ value.Value, args []value.Value) (value.Value, *failure.Failure) {
	path, ferr := readPath("remove_recursive", args)
	if ferr != nil {
		return value.Value{}, ferr
	}
	var count int64
	_ = filepath.Walk(path, func(_ string, _ os.FileInfo, err error) error {
		if err == nil {
			count++
		}
		return nil
	})
	if err := os.RemoveAll(path); err != nil {
		return value.Value{}, global.RaiseHostError(failure.Resource, err)
	}
	return value.Int(count), nil
}

func dirList(_ interface{}, _ value.Value, args []value.Value) (value.Value, *failure.Failure) {
	path, ferr := readPath("dir_list", args)
	if ferr != nil {
		return value.Value{}, ferr
	}
	entries, err := os.ReadDir(path)
	if err != nil {
		return value.Value{}, global.RaiseHostError(failure.Resource, err)
	}
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name()
	}
	sort.Strings(names)
	obj := value.NewObject()
	for _, n := range names {
		fi, err := os.Lstat(filepath.Join(path, n))
		kind := "unknown"
		if err == nil {
			switch {
			case fi.Mode()&os.ModeSymlink != 0:
				kind = "symbolic_link"
			case fi.IsDir():
				kind = "directory"
			default:
				kind = "regular"
			}
		}
		obj.Set(n, value.Str(kind))
	}
	return value.ObjectVal(obj), nil
}

func dirCreate(_ interface{}, _ value.Value, args []value.Value) (value.Value, *failure.Failure) {
	path, ferr := readPath("dir_create", args)
	if ferr != nil {
		return value.Value{}, ferr
	}
	if err := os.Mkdir(path, 0o755); err != nil {
		if os.IsExist(err) {
			return value.Int(1), nil
		}
		return value.Value{}, global.RaiseHostError(failure.Resource, err)
	}
	return value.Int(0), nil
}

func dirRemove(_ interface{}, _ value.Value, args []value.Value) (value.Value, *failure.Failure) {
	path, ferr := readPath("dir_remove", args)
	if ferr != nil {
		return value.Value{}, ferr
	}
	if err := os.Remove(path); err != nil {
		return value.Value{}, global.RaiseHostError(failure.Resource, err)
	}
	return value.Int(0), nil
}

func fileRead(_ interface{}, _ value.Value, args []value.Value) (value.Value, *failure.Failure) {
	path, offset, limit, ferr := readPathOffsetLimit("file_read", args)
	if ferr != nil {
		return value.Value{}, ferr
	}
	if offset < 0 {
		return value.Value{}, failure.New(failure.Argument, "file_read offset must not be negative")
	}

	f, err := os.Open(path)
	if err != nil {
		return value.Value{}, global.RaiseHostError(failure.Resource, err)
	}
	defer f.Close()
	if offset > 0 {
		if _, err := f.Seek(offset, io.SeekStart); err != nil {
			return value.Value{}, global.RaiseHostError(failure.Resource, err)
		}
	}
	var data []byte
	if limit >= 0 {
		data = make([]byte, limit)
		n, err := io.ReadFull(f, data)
		if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
			return value.Value{}, global.RaiseHostError(failure.Resource, err)
		}
		data = data[:n]
	} else {
		data, err = io.ReadAll(f)
		if err != nil {
			return value.Value{}, global.RaiseHostError(failure.Resource, err)
		}
	}
	return value.Str(string(data)), nil
}

// fileStream reads path in growing batches (doubling up to 1 MiB) and
// invokes callback(offset, chunk) for each, matching filesystem.cpp's
// streaming read loop; the callback's return value is ignored. When g is
// not a *global.Global or no call hook is installed, the chunks are read
// and counted but the callback is not invoked.
func fileStream(g interface{}, _ value.Value, args []value.Value) (value.Value, *failure.Failure) {
	path, ferr := requireString(args, 0, "file_stream")
	if ferr != nil {
		return value.Value{}, ferr
	}
	if len(args) < 2 || args[1].Kind() != value.FunctionKind {
		return value.Value{}, failure.New(failure.Argument, "file_stream requires a callback function")
	}
	callback := args[1]
	offset := optionalInt(args, 2, 0)
	if offset < 0 {
		return value.Value{}, failure.New(failure.Argument, "file_stream offset must not be negative")
	}
	limit := optionalInt(args, 3, -1)

	f, err := os.Open(path)
	if err != nil {
		return value.Value{}, global.RaiseHostError(failure.Resource, err)
	}
	defer f.Close()
	if offset > 0 {
		if _, err := f.Seek(offset, io.SeekStart); err != nil {
			return value.Value{}, global.RaiseHostError(failure.Resource, err)
		}
	}

	gg, _ := g.(*global.Global)

	const maxBatch = 1 << 20
	batch := 4096
	pos := offset
	var total int64
	for {
		if limit >= 0 && total >= limit {
			break
		}
		want := batch
		if limit >= 0 && int64(want) > limit-total {
			want = int(limit - total)
		}
		buf := make([]byte, want)
		n, rerr := f.Read(buf)
		if n > 0 {
			chunk := value.Str(string(buf[:n]))
			if gg != nil && eval.CallHook != nil {
				callArgs := []*reference.Reference{reference.Constant(value.Int(pos)), reference.Constant(chunk)}
				if _, ferr := eval.CallHook(gg, callback, reference.Constant(value.Null_), callArgs, false, failure.Location{}); ferr != nil {
					return value.Value{}, ferr
				}
			}
			pos += int64(n)
			total += int64(n)
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return value.Value{}, global.RaiseHostError(failure.Resource, rerr)
		}
		if batch < maxBatch {
			batch *= 2
			if batch > maxBatch {
				batch = maxBatch
			}
		}
	}
	return value.Int(total), nil
}

func fileWrite(_ interface{}, _ value.Value, args []value.Value) (value.Value, *failure.Failure) {
	path, ferr := requireString(args, 0, "file_write")
	if ferr != nil {
		return value.Value{}, ferr
	}
	offset := optionalInt(args, 1, 0)
	if offset < 0 {
		return value.Value{}, failure.New(failure.Argument, "file_write offset must not be negative")
	}
	data, ferr := requireString(args, 2, "file_write")
	if ferr != nil {
		return value.Value{}, ferr
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return value.Value{}, global.RaiseHostError(failure.Resource, err)
	}
	defer f.Close()
	if _, err := f.WriteAt([]byte(data), offset); err != nil {
		return value.Value{}, global.RaiseHostError(failure.Resource, err)
	}
	return value.Int(int64(len(data))), nil
}

func fileAppend(_ interface{}, _ value.Value, args []value.Value) (value.Value, *failure.Failure) {
	path, ferr := requireString(args, 0, "file_append")
	if ferr != nil {
		return value.Value{}, ferr
	}
	data, ferr := requireString(args, 1, "file_append")
	if ferr != nil {
		return value.Value{}, ferr
	}
	exclusive := len(args) > 2 && args[2].Kind() == value.Boolean && args[2].Bool()

	flags := os.O_CREATE | os.O_WRONLY | os.O_APPEND
	if exclusive {
		flags |= os.O_EXCL
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return value.Value{}, global.RaiseHostError(failure.Resource, err)
	}
	defer f.Close()
	if _, err := f.Write([]byte(data)); err != nil {
		return value.Value{}, global.RaiseHostError(failure.Resource, err)
	}
	return value.Int(int64(len(data))), nil
}

func fileCopyFrom(_ interface{}, _ value.Value, args []value.Value) (value.Value, *failure.Failure) {
	newPath, ferr := requireString(args, 0, "file_copy_from")
	if ferr != nil {
		return value.Value{}, ferr
	}
	oldPath, ferr := requireString(args, 1, "file_copy_from")
	if ferr != nil {
		return value.Value{}, ferr
	}
	src, err := os.Open(oldPath)
	if err != nil {
		return value.Value{}, global.RaiseHostError(failure.Resource, err)
	}
	defer src.Close()
	dst, err := os.OpenFile(newPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return value.Value{}, global.RaiseHostError(failure.Resource, err)
	}
	defer dst.Close()
	n, err := io.Copy(dst, src)
	if err != nil {
		return value.Value{}, global.RaiseHostError(failure.Resource, err)
	}
	return value.Int(n), nil
}

func fileRemove(_ interface{}, _ value.Value, args []value.Value) (value.Value, *failure.Failure) {
	path, ferr := readPath("file_remove", args)
	if ferr != nil {
		return value.Value{}, ferr
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return value.Bool(false), nil
		}
		return value.Value{}, global.RaiseHostError(failure.Resource, err)
	}
	return value.Bool(true), nil
}
