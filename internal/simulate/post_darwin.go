//go:build darwin

package simulate

/*
#cgo CFLAGS: -x objective-c
#cgo LDFLAGS: -framework CoreGraphics -framework AppKit

#include <CoreGraphics/CoreGraphics.h>
#import <AppKit/AppKit.h>

// Media, brightness and volume keys have no virtual key code. The OS
// models them as system-defined events with the aux control subtype
// (8). data1 packs (keyCode << 16) | stateFlags where 0x0A00 marks the
// down half and 0x0B00 the up half; data2 = -1 means no auto repeat.
// Posting the pair to the HID event tap takes the same path hardware
// special keys do.
void postSpecialKeyPair(int code) {
    @autoreleasepool {
        for (int down = 1; down >= 0; down--) {
            long flags = (down ? 0x0A : 0x0B) << 8;
            NSEvent* ev = [NSEvent otherEventWithType:NSEventTypeSystemDefined
                                             location:NSZeroPoint
                                        modifierFlags:flags
                                            timestamp:0
                                         windowNumber:0
                                              context:nil
                                              subtype:8
                                                data1:((code << 16) | flags)
                                                data2:-1];
            CGEventRef cg = [ev CGEvent];
            if (cg != NULL) {
                CGEventPost(kCGHIDEventTap, cg);
            }
        }
    }
}

// Ordinary keys (mission control 160, launchpad 131) go through the
// generic virtual key mechanism from a HID-state event source.
void postVirtualKeyState(int code, int down) {
    CGEventSourceRef source = CGEventSourceCreate(kCGEventSourceStateHIDSystemState);
    CGEventRef ev = CGEventCreateKeyboardEvent(source, (CGKeyCode)code, down != 0);
    if (ev != NULL) {
        CGEventPost(kCGHIDEventTap, ev);
        CFRelease(ev);
    }
    if (source != NULL) {
        CFRelease(source);
    }
}
*/
import "C"

type darwinPoster struct{}

func newPoster() EventPoster {
	return darwinPoster{}
}

func (darwinPoster) PostSpecialKey(code int) error {
	C.postSpecialKeyPair(C.int(code))
	return nil
}

func (darwinPoster) PostVirtualKey(codes []int) error {
	for _, code := range codes {
		C.postVirtualKeyState(C.int(code), 1)
	}
	for i := len(codes) - 1; i >= 0; i-- {
		C.postVirtualKeyState(C.int(codes[i]), 0)
	}
	return nil
}
